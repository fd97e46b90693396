package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

func renderHTML(t *testing.T, ctx *RenderContext) string {
	t.Helper()
	var buf bytes.Buffer
	ctx.Out = &buf
	require.NoError(t, ctx.Render())
	return buf.String()
}

func TestWriteHTMLCompleteRecord(t *testing.T) {
	ctx := NewRenderContext(loadRecord(t, "complete.json"), Links{Download: "/api/analyses/7/export"}, nil)
	out := renderHTML(t, ctx)

	assert.Contains(t, out, "<title>Análise de Avatar Completa</title>")
	assert.Contains(t, out, `data-action="download" href="/api/analyses/7/export"`)
	assert.Contains(t, out, `data-action="share" href="#"`)
	for _, key := range record.SectionKeys {
		assert.Contains(t, out, `data-section="`+key+`"`)
	}
	assert.Contains(t, out, "Marca, Comunidade")
	assert.Contains(t, out, "Caro, Genérico")
	assert.Contains(t, out, "<strong>Instagram:</strong> 320%")
	assert.Contains(t, out, `class="card severity-alta" data-severity="alta"`)
	assert.Contains(t, out, `class="card severity-media" data-severity="média"`)
	assert.NotContains(t, out, "undefined")
}

func TestWriteHTMLShowsExactlyOneTabPanel(t *testing.T) {
	ctx := NewRenderContext(loadRecord(t, "complete.json"), Links{}, nil)
	out := renderHTML(t, ctx)

	assert.Equal(t, 3, strings.Count(out, "data-tab-panel="))
	assert.Equal(t, 2, strings.Count(out, "hidden>"))
	assert.Contains(t, out, `data-tab-panel="demografia">`)
	assert.Contains(t, out, `data-tab="demografia" class="active"`)
	assert.Equal(t, 1, strings.Count(out, `class="active"`))
}

func TestRenderContextSelectTab(t *testing.T) {
	ctx := NewRenderContext(loadRecord(t, "complete.json"), Links{}, nil)

	assert.True(t, ctx.SelectTab("psicografia"))
	out := renderHTML(t, ctx)
	assert.Contains(t, out, `data-tab-panel="psicografia">`)
	assert.Contains(t, out, `data-tab-panel="demografia" hidden>`)
	assert.Contains(t, out, `data-tab="psicografia" class="active"`)

	assert.False(t, ctx.SelectTab("bogus"))
	assert.Equal(t, TabPsicografia, ctx.Tabs.Active())
	assert.Equal(t, out, renderHTML(t, ctx))
}

func TestWriteHTMLUnavailableSection(t *testing.T) {
	rec := record.MustParse(`{"escopo":{"nicho_principal":"Fitness"},"mercado":[1,2]}`)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Compose(rec, Links{})))
	out := buf.String()

	assert.Contains(t, out, `class="section unavailable" id="mercado"`)
	assert.Contains(t, out, UnavailableMessage)
	assert.Contains(t, out, "Fitness")
}

func TestWriteHTMLEscapesContent(t *testing.T) {
	rec := record.MustParse(`{"escopo":{"nicho_principal":"<script>alert(1)</script>"}}`)
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Compose(rec, Links{})))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}
