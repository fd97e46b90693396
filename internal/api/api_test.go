package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/avatar-analyzer/internal/export"
	"github.com/BerylCAtieno/avatar-analyzer/internal/logger"
	"github.com/BerylCAtieno/avatar-analyzer/internal/metrics"
	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
	"github.com/BerylCAtieno/avatar-analyzer/internal/storage"
)

const sampleRecord = `{"escopo":{"nicho_principal":"Fitness","subnichos":["Yoga"]},"avatar":{"demografia":{"faixa_etaria":"25-34"}}}`

type stubAnalyzer struct {
	rec record.AnalysisRecord
	err error
}

func (s stubAnalyzer) Analyze(context.Context, models.AnalysisRequest) (record.AnalysisRecord, error) {
	return s.rec, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, a service.Options) *gin.Engine {
	t.Helper()
	log := logger.Discard()
	a.Log = log
	if a.Metrics == nil {
		a.Metrics = metrics.New()
	}
	return NewRouter(Options{
		Service: service.New(a),
		Metrics: a.Metrics,
		Log:     log,
	})
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload models.ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error
}

func TestAnalyzeAndFetch(t *testing.T) {
	r := newTestRouter(t, service.Options{
		Analyzer: stubAnalyzer{rec: record.MustParse(sampleRecord)},
		Store:    storage.NewMemory(),
	})

	rec := do(r, "POST", "/api/analyze", `{"nicho":" Fitness ","preco":"97,90"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["analysis_id"])
	assert.Contains(t, body, "escopo")

	rec = do(r, "GET", "/api/analyses/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stored models.StoredAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, "Fitness", stored.Request.Nicho)
	assert.Equal(t, 97.9, stored.Request.Preco.Value)

	rec = do(r, "GET", "/api/analyses?limit=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.AnalysisSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Fitness", list[0].Nicho)
}

func TestAnalyzeErrors(t *testing.T) {
	r := newTestRouter(t, service.Options{
		Analyzer: stubAnalyzer{err: errors.New("boom")},
		Store:    storage.NewMemory(),
	})

	rec := do(r, "POST", "/api/analyze", `{"nicho":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgNichoRequired, errorOf(t, rec))

	rec = do(r, "POST", "/api/analyze", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, "POST", "/api/analyze", `{"nicho":"Fitness"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, MsgAnalysisFailed, errorOf(t, rec))

	rec = do(r, "GET", "/api/analyses/1/report", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	noAnalyzer := newTestRouter(t, service.Options{Store: storage.NewMemory()})
	rec = do(noAnalyzer, "POST", "/api/analyze", `{"nicho":"Fitness"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalysisLookupErrors(t *testing.T) {
	r := newTestRouter(t, service.Options{Store: storage.NewMemory()})

	rec := do(r, "GET", "/api/analyses/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgAnalysisNotFound, errorOf(t, rec))

	rec = do(r, "GET", "/api/analyses/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bare := newTestRouter(t, service.Options{})
	rec = do(bare, "GET", "/api/analyses", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, MsgStorageDisabled, errorOf(t, rec))
}

func TestStoredReportViewAndExport(t *testing.T) {
	r := newTestRouter(t, service.Options{
		Analyzer: stubAnalyzer{rec: record.MustParse(sampleRecord)},
		Store:    storage.NewMemory(),
	})
	require.Equal(t, http.StatusOK, do(r, "POST", "/api/analyze", `{"nicho":"Fitness"}`).Code)

	rec := do(r, "GET", "/api/analyses/1/report?tab=psicografia", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `href="/api/analyses/1/export"`)

	rec = do(r, "GET", "/api/analyses/1/view?tab=comportamento", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Header struct {
			Summary string `json:"summary"`
		} `json:"header"`
		Sections []struct {
			Key  string `json:"key"`
			Tabs []struct {
				Name   string `json:"name"`
				Active bool   `json:"active"`
			} `json:"tabs"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "2 de 10 seções disponíveis", view.Header.Summary)
	require.Len(t, view.Sections, 2)
	for _, tab := range view.Sections[1].Tabs {
		assert.Equal(t, tab.Name == "comportamento", tab.Active, tab.Name)
	}

	rec = do(r, "GET", "/api/analyses/1/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="analise-avatar-\d+\.txt"$`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), export.Title))
	assert.Contains(t, rec.Body.String(), "Subnichos: Yoga")
}

func TestRenderAndExportPostedRecord(t *testing.T) {
	r := newTestRouter(t, service.Options{})

	rec := do(r, "POST", "/api/render", sampleRecord)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fitness")

	rec = do(r, "POST", "/api/export", sampleRecord)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nicho Principal: Fitness")

	rec = do(r, "POST", "/api/render", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, MsgInvalidBody, errorOf(t, rec))
}

func TestNichosAndTemplates(t *testing.T) {
	store := storage.NewMemory()
	templates, err := storage.DefaultTemplates()
	require.NoError(t, err)
	require.NoError(t, store.SeedTemplates(context.Background(), templates))
	r := newTestRouter(t, service.Options{
		Analyzer: stubAnalyzer{rec: record.MustParse(sampleRecord)},
		Store:    store,
	})
	require.Equal(t, http.StatusOK, do(r, "POST", "/api/analyze", `{"nicho":"Fitness funcional"}`).Code)

	rec := do(r, "POST", "/api/nichos", `{"search":"fit"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"nichos":["Fitness","Fitness funcional"]}`, rec.Body.String())

	rec = do(r, "POST", "/api/nichos", `{"search":"zzz"}`)
	assert.JSONEq(t, `{"nichos":[]}`, rec.Body.String())

	rec = do(r, "GET", "/api/nichos", "")
	assert.JSONEq(t, `{"nichos":[{"nicho":"Fitness funcional","count":1}]}`, rec.Body.String())

	rec = do(r, "GET", "/api/templates/fitness", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tpl models.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpl))
	assert.Equal(t, "Fitness", tpl.Nicho)

	rec = do(r, "GET", "/api/templates/astrologia", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgTemplateNotFound, errorOf(t, rec))
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	r := newTestRouter(t, service.Options{Store: storage.NewMemory()})

	rec := do(r, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"Aplicação funcionando corretamente","gemini_status":"not_configured","database_status":"connected"}`, rec.Body.String())

	rec = do(r, "GET", "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgNotFound, errorOf(t, rec))

	rec = do(r, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `avatar_http_requests_total{code="200",method="GET",route="/health"} 1`)
}

func TestCORSAndRequestID(t *testing.T) {
	r := newTestRouter(t, service.Options{})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
