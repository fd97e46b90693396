package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordAnalysis("completed")
	m.RecordAnalysis("completed")
	m.RecordAnalysis("failed")
	m.RecordRender("html", []string{"mercado"})
	m.RecordRender("json", nil)
	m.RecordExport("download")
	m.RecordHTTP("GET", "/api/nichos", 200, 10*time.Millisecond)
	m.ObserveAnalysis()()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsRendered.WithLabelValues("html")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SectionsUnavailable.WithLabelValues("mercado")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("download")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/nichos", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAnalysis("completed")
		m.ObserveAnalysis()()
		m.RecordRender("html", []string{"x"})
		m.RecordExport("download")
		m.RecordHTTP("GET", "/", 200, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordExport("a2a")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `avatar_exports_total{channel="a2a"} 1`)
}
