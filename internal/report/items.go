package report

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

// Severity levels recognised on a pain item. Matching is exact.
var severities = map[string]string{
	"alta":  "severity-alta",
	"média": "severity-media",
	"baixa": "severity-baixa",
}

// SeverityLevel returns urgencia when it is one of the recognised levels.
func SeverityLevel(urgencia string) string {
	if _, ok := severities[urgencia]; ok {
		return urgencia
	}
	return ""
}

// SeverityClass maps a recognised level to its style class.
func SeverityClass(level string) string {
	return severities[level]
}

// Capitalize upper-cases the first rune of s for display.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

type detailSpec struct {
	path  string
	label string
}

// FieldItems reads one field of a section and returns its items. A
// missing value yields a single placeholder item. Both the structured
// view and the plain-text export go through here.
func FieldItems(f Field, section record.Node, acc record.Accessor) ([]Item, error) {
	switch f.Kind {
	case KindText:
		text, err := acc.Text(section, f.Path)
		if err != nil {
			return nil, err
		}
		return []Item{{Text: text, Placeholder: text == acc.Placeholder}}, nil

	case KindList:
		values, err := acc.Strings(section, f.Path)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(values))
		for _, v := range values {
			items = append(items, Item{Text: v, Placeholder: v == acc.Placeholder})
		}
		return items, nil

	case KindScenario:
		return pairs(section, f.Path, acc, []detailSpec{
			{"conversao", "Conversão"},
			{"faturamento", "Faturamento"},
			{"roi", "ROI"},
		})

	case KindPains:
		return cards(section, f.Path, acc, painItem)
	case KindCompetitors:
		return cards(section, f.Path, acc, competitorItem)
	case KindIndirect:
		return cards(section, f.Path, acc, simpleItem("nome", []detailSpec{{"tipo", "Tipo"}}))
	case KindKeywords:
		return cards(section, f.Path, acc, simpleItem("termo", []detailSpec{
			{"volume", "Volume"},
			{"cpc", "CPC"},
			{"dificuldade", "Dificuldade"},
			{"intencao", "Intenção"},
		}))
	case KindObjections:
		return cards(section, f.Path, acc, simpleItem("objecao", []detailSpec{{"contorno", "Contorno"}}))
	case KindSteps:
		return cards(section, f.Path, acc, stepItem)

	case KindPlatformCosts:
		return entries(section, f.Path, acc, func(e record.Entry) (Item, error) {
			details, err := readDetails(e.Value, acc, []detailSpec{
				{"cpm", "CPM"},
				{"cpc", "CPC"},
				{"cpl", "CPL"},
				{"conversao", "Conversão"},
			})
			return Item{Text: Capitalize(e.Key), Details: details}, err
		})
	case KindChannelROI:
		return entries(section, f.Path, acc, func(e record.Entry) (Item, error) {
			text, err := acc.Text(e.Value, "")
			return Item{Label: Capitalize(e.Key), Text: text}, err
		})
	}
	return nil, nil
}

func placeholderItems(acc record.Accessor) []Item {
	return []Item{{Text: acc.Placeholder, Placeholder: true}}
}

func cards(section record.Node, path string, acc record.Accessor, build func(record.Node, record.Accessor) (Item, error)) ([]Item, error) {
	nodes, ok, err := acc.Nodes(section, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return placeholderItems(acc), nil
	}
	items := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		item, err := build(n, acc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func entries(section record.Node, path string, acc record.Accessor, build func(record.Entry) (Item, error)) ([]Item, error) {
	list, ok, err := acc.Entries(section, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return placeholderItems(acc), nil
	}
	items := make([]Item, 0, len(list))
	for _, e := range list {
		item, err := build(e)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func pairs(section record.Node, path string, acc record.Accessor, specs []detailSpec) ([]Item, error) {
	n, err := section.At(path)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(specs))
	for _, s := range specs {
		text, err := acc.Text(n, s.path)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Label: s.label, Text: text, Placeholder: text == acc.Placeholder})
	}
	return items, nil
}

func readDetails(n record.Node, acc record.Accessor, specs []detailSpec) ([]Detail, error) {
	details := make([]Detail, 0, len(specs))
	for _, s := range specs {
		v, err := acc.Text(n, s.path)
		if err != nil {
			return nil, err
		}
		details = append(details, Detail{Label: s.label, Value: v})
	}
	return details, nil
}

func simpleItem(titlePath string, specs []detailSpec) func(record.Node, record.Accessor) (Item, error) {
	return func(n record.Node, acc record.Accessor) (Item, error) {
		title, err := acc.Text(n, titlePath)
		if err != nil {
			return Item{}, err
		}
		details, err := readDetails(n, acc, specs)
		if err != nil {
			return Item{}, err
		}
		return Item{Text: title, Details: details}, nil
	}
}

func painItem(n record.Node, acc record.Accessor) (Item, error) {
	item, err := simpleItem("descricao", []detailSpec{
		{"impacto", "Impacto"},
		{"urgencia", "Urgência"},
	})(n, acc)
	if err != nil {
		return Item{}, err
	}
	urgencia, err := acc.Text(n, "urgencia")
	if err != nil {
		return Item{}, err
	}
	item.Severity = SeverityLevel(urgencia)
	return item, nil
}

func competitorItem(n record.Node, acc record.Accessor) (Item, error) {
	item, err := simpleItem("nome", []detailSpec{
		{"preco", "Preço"},
		{"usp", "USP"},
	})(n, acc)
	if err != nil {
		return Item{}, err
	}
	for _, s := range []detailSpec{{"forcas", "Forças"}, {"fraquezas", "Fraquezas"}} {
		v, err := acc.Joined(n, s.path)
		if err != nil {
			return Item{}, err
		}
		item.Details = append(item.Details, Detail{Label: s.label, Value: v})
	}
	return item, nil
}

func stepItem(n record.Node, acc record.Accessor) (Item, error) {
	item, err := simpleItem("acao", []detailSpec{{"prazo", "Prazo"}})(n, acc)
	if err != nil {
		return Item{}, err
	}
	passo, err := acc.Text(n, "passo")
	if err != nil {
		return Item{}, err
	}
	if passo != acc.Placeholder {
		item.Label = "Passo " + strings.TrimSpace(passo)
	}
	return item, nil
}
