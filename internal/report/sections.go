package report

import "github.com/BerylCAtieno/avatar-analyzer/internal/record"

var viewAccessor = record.Accessor{Placeholder: record.ViewPlaceholder}

// Renderer maps one section of a record to a fragment.
type Renderer func(section record.Node) (Fragment, error)

func RenderEscopo(section record.Node) (Fragment, error) {
	return renderSection(escopoSection, section)
}

// RenderAvatar groups the avatar fields under three tabs, demografia
// active.
func RenderAvatar(section record.Node) (Fragment, error) {
	if section.Missing() {
		return Fragment{}, nil
	}
	frag := header(avatarSection)
	for _, t := range avatarTabs {
		blocks, err := renderBlocks(avatarSection.FieldsForTab(t.name), section)
		if err != nil {
			return Fragment{}, err
		}
		frag.Tabs = append(frag.Tabs, Tab{
			Name:   t.name,
			Label:  t.label,
			Active: t.name == TabDemografia,
			Blocks: blocks,
		})
	}
	return frag, nil
}

func RenderDoresDesejos(section record.Node) (Fragment, error) {
	return renderSection(doresDesejosSection, section)
}

func RenderConcorrencia(section record.Node) (Fragment, error) {
	return renderSection(concorrenciaSection, section)
}

func RenderMercado(section record.Node) (Fragment, error) {
	return renderSection(mercadoSection, section)
}

func RenderPalavrasChave(section record.Node) (Fragment, error) {
	return renderSection(palavrasChaveSection, section)
}

func RenderMetricas(section record.Node) (Fragment, error) {
	return renderSection(metricasSection, section)
}

func RenderVozMercado(section record.Node) (Fragment, error) {
	return renderSection(vozMercadoSection, section)
}

func RenderProjecoes(section record.Node) (Fragment, error) {
	return renderSection(projecoesSection, section)
}

// RenderPlanoAcao keeps the steps in delivered order.
func RenderPlanoAcao(section record.Node) (Fragment, error) {
	return renderSection(planoAcaoSection, section)
}

func header(spec SectionSpec) Fragment {
	return Fragment{Key: spec.Key, Title: spec.Title, Icon: spec.Icon}
}

func renderSection(spec SectionSpec, section record.Node) (Fragment, error) {
	if section.Missing() {
		return Fragment{}, nil
	}
	blocks, err := renderBlocks(spec.Fields, section)
	if err != nil {
		return Fragment{}, err
	}
	frag := header(spec)
	frag.Blocks = blocks
	return frag, nil
}

func renderBlocks(fields []Field, section record.Node) ([]Block, error) {
	blocks := make([]Block, 0, len(fields))
	for _, f := range fields {
		items, err := FieldItems(f, section, viewAccessor)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, Block{Label: f.Label, Kind: blockKind(f.Kind), Items: items})
	}
	return blocks, nil
}
