package report

import (
	"io"

	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

// RenderContext ties one displayed report to its record, its tab state
// and its output sink. A new context always starts on the first tab.
type RenderContext struct {
	Record record.AnalysisRecord
	Tabs   *TabState
	Links  Links
	Out    io.Writer
}

func NewRenderContext(rec record.AnalysisRecord, links Links, out io.Writer) *RenderContext {
	return &RenderContext{
		Record: rec,
		Tabs:   NewTabState(),
		Links:  links,
		Out:    out,
	}
}

// SelectTab forwards to the context's tab state.
func (c *RenderContext) SelectTab(name string) bool {
	return c.Tabs.Select(name)
}

// View composes the record and marks the active tab.
func (c *RenderContext) View() ReportView {
	view := Compose(c.Record, c.Links)
	c.Tabs.Apply(&view)
	return view
}

// Render writes the HTML report to the context's sink.
func (c *RenderContext) Render() error {
	return WriteHTML(c.Out, c.View())
}
