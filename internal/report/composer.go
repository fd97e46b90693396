package report

import (
	"fmt"

	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

const (
	ReportTitle        = "Análise de Avatar Completa"
	UnavailableMessage = "Seção indisponível"
)

// renderers run in report order, matching Sections.
var renderers = []struct {
	key    string
	render Renderer
}{
	{record.Escopo, RenderEscopo},
	{record.Avatar, RenderAvatar},
	{record.DoresDesejos, RenderDoresDesejos},
	{record.Concorrencia, RenderConcorrencia},
	{record.Mercado, RenderMercado},
	{record.PalavrasChave, RenderPalavrasChave},
	{record.Metricas, RenderMetricas},
	{record.VozMercado, RenderVozMercado},
	{record.Projecoes, RenderProjecoes},
	{record.PlanoAcao, RenderPlanoAcao},
}

// Links carries the host URLs behind the two header actions.
type Links struct {
	Download string
	Share    string
}

type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

type Header struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Actions []Action `json:"actions"`
}

// ReportView is the composed, medium-independent report.
type ReportView struct {
	Header   Header     `json:"header"`
	Sections []Fragment `json:"sections"`
}

// Unavailable lists the fragments that failed on malformed input.
func (v ReportView) Unavailable() []Fragment {
	var out []Fragment
	for _, f := range v.Sections {
		if f.Unavailable {
			out = append(out, f)
		}
	}
	return out
}

// Section returns the fragment for key, if it was rendered.
func (v ReportView) Section(key string) (Fragment, bool) {
	for _, f := range v.Sections {
		if f.Key == key {
			return f, true
		}
	}
	return Fragment{}, false
}

// Compose renders every section of rec in report order. Absent sections
// contribute nothing; a section with malformed content is replaced by an
// unavailable notice and the rest of the report is unaffected.
func Compose(rec record.AnalysisRecord, links Links) ReportView {
	view := ReportView{Sections: make([]Fragment, 0, len(renderers))}
	for _, r := range renderers {
		frag, err := r.render(rec.Section(r.key))
		if err != nil {
			frag = unavailable(r.key, err)
		}
		if frag.Empty() {
			continue
		}
		view.Sections = append(view.Sections, frag)
	}
	view.Header = Header{
		Title:   ReportTitle,
		Summary: fmt.Sprintf("%d de %d seções disponíveis", len(view.Sections)-len(view.Unavailable()), len(renderers)),
		Actions: []Action{
			{Name: "download", Label: "Baixar Relatório", Href: links.Download},
			{Name: "share", Label: "Compartilhar", Href: links.Share},
		},
	}
	return view
}

func unavailable(key string, err error) Fragment {
	frag := Fragment{Key: key, Unavailable: true, Reason: err.Error()}
	for _, s := range Sections {
		if s.Key == key {
			frag.Title, frag.Icon = s.Title, s.Icon
		}
	}
	frag.Blocks = []Block{{
		Label: frag.Title,
		Kind:  BlockText,
		Items: []Item{{Text: UnavailableMessage, Placeholder: true}},
	}}
	return frag
}
