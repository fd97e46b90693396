package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/avatar-analyzer/internal/logger"
	"github.com/BerylCAtieno/avatar-analyzer/internal/metrics"
	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/report"
	"github.com/BerylCAtieno/avatar-analyzer/internal/storage"
)

type fakeAnalyzer struct {
	rec   record.AnalysisRecord
	err   error
	calls int
	got   models.AnalysisRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (record.AnalysisRecord, error) {
	f.calls++
	f.got = req
	return f.rec, f.err
}

type fixture struct {
	svc      *Service
	analyzer *fakeAnalyzer
	store    *storage.Memory
	notes    *notify.Recorder
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		analyzer: &fakeAnalyzer{rec: record.MustParse(`{"escopo":{"nicho_principal":"Fitness"},"mercado":"oops"}`)},
		store:    storage.NewMemory(),
		notes:    &notify.Recorder{},
		metrics:  metrics.New(),
	}
	f.svc = New(Options{
		Analyzer: f.analyzer,
		Store:    f.store,
		Notifier: notify.New(f.notes, 0),
		Metrics:  f.metrics,
		Log:      logger.Discard(),
	})
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func TestAnalyzeStoresCompletedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Analyze(ctx, models.AnalysisRequest{Nicho: "  Fitness ", Produto: " App "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, "Fitness", f.analyzer.got.Nicho)
	assert.Equal(t, "App", f.analyzer.got.Produto)

	stored, err := f.svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.JSONEq(t, string(res.Record.Bytes()), string(stored.Record.Bytes()))

	last, ok := f.notes.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Success, last.Severity)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AnalysesTotal.WithLabelValues("completed")))
}

func TestAnalyzeRequiresNicho(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Analyze(context.Background(), models.AnalysisRequest{Nicho: "   "})
	assert.ErrorIs(t, err, ErrNichoRequired)
	assert.Zero(t, f.analyzer.calls)
}

func TestAnalyzeFailureIsStoredOnce(t *testing.T) {
	f := newFixture(t)
	f.analyzer.err = errors.New("quota exceeded")
	ctx := context.Background()

	res, err := f.svc.Analyze(ctx, models.AnalysisRequest{Nicho: "Fitness"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 1, f.analyzer.calls)

	stored, err := f.svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, "quota exceeded", stored.Error)

	last, ok := f.notes.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, last.Severity)
	assert.Equal(t, notify.DefaultDuration, last.Duration)
}

type failingStore struct {
	*storage.Memory
	err error
}

func (s failingStore) Complete(context.Context, int64, record.AnalysisRecord) error {
	return s.err
}

func TestAnalyzeSaveFailureMarksRowFailed(t *testing.T) {
	f := newFixture(t)
	f.svc.store = failingStore{Memory: f.store, err: errors.New("connection reset")}
	ctx := context.Background()

	res, err := f.svc.Analyze(ctx, models.AnalysisRequest{Nicho: "Fitness"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, int64(1), res.ID)

	stored, err := f.store.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, "connection reset", stored.Error)

	last, ok := f.notes.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, last.Severity)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AnalysesTotal.WithLabelValues("failed")))
	assert.Zero(t, testutil.ToFloat64(f.metrics.AnalysesTotal.WithLabelValues("completed")))
}

func TestAnalyzeWithoutStorage(t *testing.T) {
	a := &fakeAnalyzer{rec: record.MustParse(`{"escopo":{}}`)}
	svc := New(Options{Analyzer: a, Log: logger.Discard()})

	res, err := svc.Analyze(context.Background(), models.AnalysisRequest{Nicho: "Yoga"})
	require.NoError(t, err)
	assert.Zero(t, res.ID)
	assert.False(t, res.Record.IsZero())

	_, err = svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.List(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestAnalyzeWithoutAnalyzer(t *testing.T) {
	svc := New(Options{Store: storage.NewMemory(), Log: logger.Discard()})
	_, err := svc.Analyze(context.Background(), models.AnalysisRequest{Nicho: "Yoga"})
	assert.ErrorIs(t, err, ErrAnalyzerUnavailable)
	assert.False(t, svc.AnalyzerConfigured())
	assert.True(t, svc.StorageConfigured())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-3))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxListLimit, ClampLimit(1000))
}

func TestSearchNichosAndTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Analyze(ctx, models.AnalysisRequest{Nicho: "Fitness funcional"})
	require.NoError(t, err)

	found, err := f.svc.SearchNichos(ctx, "fit")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fitness funcional"}, found)

	// nothing seeded: falls back to the embedded set
	tpl, err := f.svc.Template(ctx, "marketing digital")
	require.NoError(t, err)
	assert.Equal(t, "Marketing Digital", tpl.Nicho)

	_, err = f.svc.Template(ctx, "Astrologia")
	assert.ErrorIs(t, err, ErrNotFound)

	bare := New(Options{Log: logger.Discard()})
	found, err = bare.SearchNichos(ctx, "FIN")
	require.NoError(t, err)
	assert.Equal(t, []string{"Finanças Pessoais"}, found)
}

func TestViewSelectsTabAndCountsUnavailable(t *testing.T) {
	f := newFixture(t)
	rec := record.MustParse(`{"avatar":{"demografia":{"faixa_etaria":"25-34"}},"mercado":"oops"}`)

	view := f.svc.View(rec, LinksFor(4), "psicografia")
	frag, ok := view.Section(record.Avatar)
	require.True(t, ok)
	active, ok := frag.VisibleTab()
	require.True(t, ok)
	assert.Equal(t, report.TabName("psicografia"), active.Name)
	assert.Equal(t, "/api/analyses/4/export", view.Header.Actions[0].Href)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SectionsUnavailable.WithLabelValues(record.Mercado)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsRendered.WithLabelValues("json")))

	view = f.svc.View(rec, report.Links{}, "bogus")
	frag, _ = view.Section(record.Avatar)
	active, _ = frag.VisibleTab()
	assert.Equal(t, report.TabName("demografia"), active.Name)
}

func TestRenderHTMLAndExport(t *testing.T) {
	f := newFixture(t)
	rec := record.MustParse(`{"escopo":{"nicho_principal":"Fitness"}}`)

	var html bytes.Buffer
	require.NoError(t, f.svc.RenderHTML(&html, rec, LinksFor(1), ""))
	assert.Contains(t, html.String(), report.ReportTitle)

	var text bytes.Buffer
	name, err := f.svc.Export(&text, rec, "download")
	require.NoError(t, err)
	assert.Equal(t, "analise-avatar-1700000000000.txt", name)
	assert.True(t, strings.HasPrefix(text.String(), "ANÁLISE DE AVATAR"))
	assert.Equal(t, text.String(), f.svc.ExportText(rec, "a2a"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExportsTotal.WithLabelValues("download")))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRenderHTMLWritesSelectedTab(t *testing.T) {
	f := newFixture(t)
	data, err := os.ReadFile("../report/testdata/complete.json")
	require.NoError(t, err)
	rec, err := record.Parse(data)
	require.NoError(t, err)

	var html bytes.Buffer
	require.NoError(t, f.svc.RenderHTML(&html, rec, LinksFor(3), "psicografia"))
	assert.Contains(t, html.String(), `data-tab="psicografia" class="active"`)
	assert.Contains(t, html.String(), `data-tab-panel="demografia" hidden>`)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ReportsRendered.WithLabelValues("html")))

	err = f.svc.RenderHTML(brokenWriter{}, rec, LinksFor(3), "")
	assert.ErrorContains(t, err, "failed to render report")
	assert.ErrorContains(t, err, "broken pipe")
}
