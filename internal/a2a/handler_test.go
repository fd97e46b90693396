package a2a

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
	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
	"github.com/BerylCAtieno/avatar-analyzer/internal/storage"
)

type stubAnalyzer struct {
	rec  record.AnalysisRecord
	err  error
	seen []string
}

func (s *stubAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (record.AnalysisRecord, error) {
	s.seen = append(s.seen, req.Nicho)
	return s.rec, s.err
}

func newTestServer(t *testing.T, a *stubAnalyzer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts := service.Options{Store: storage.NewMemory(), Log: logger.Discard()}
	if a != nil {
		opts.Analyzer = a
	}
	r := gin.New()
	NewA2AHandler(service.New(opts), "http://localhost:8080/", logger.Discard()).Register(r)
	return r
}

func post(t *testing.T, r http.Handler, body string) JSONRPCResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", AgentPath, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		JSONRPCResponse
		Result *TaskResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	out := resp.JSONRPCResponse
	if resp.Result != nil {
		out.Result = *resp.Result
	}
	return out
}

func rpc(method, text string) string {
	return `{"jsonrpc":"2.0","id":"req-1","method":"` + method + `","params":{"message":{"kind":"message","role":"user","parts":[{"kind":"text","text":"` + text + `"}]}}}`
}

func TestMessageSendCompletesTask(t *testing.T) {
	a := &stubAnalyzer{rec: record.MustParse(`{"escopo":{"nicho_principal":"Fitness"}}`)}
	r := newTestServer(t, a)

	resp := post(t, r, rpc("message/send", " <p>Fitness</p> "))
	require.Nil(t, resp.Error)
	task := resp.Result.(TaskResult)

	assert.Equal(t, "req-1", task.ID)
	assert.Equal(t, StateCompleted, task.Status.State)
	assert.Equal(t, []string{"Fitness"}, a.seen)
	require.Len(t, task.Artifacts, 2)

	report := task.Artifacts[0]
	assert.Equal(t, ArtifactReport, report.Name)
	assert.True(t, strings.HasPrefix(report.Parts[0].Text, export.Title))
	assert.Contains(t, report.Parts[0].Text, "Nicho Principal: Fitness")

	data := task.Artifacts[1].Parts[0]
	assert.Equal(t, "data", data.Kind)
	assert.JSONEq(t, `{"escopo":{"nicho_principal":"Fitness"}}`, string(data.Data))
}

func TestAgentTaskUsesHistory(t *testing.T) {
	a := &stubAnalyzer{rec: record.MustParse(`{}`)}
	r := newTestServer(t, a)

	body := `{"jsonrpc":"2.0","id":"7","method":"agent/task","params":{"message":{"role":"user","parts":[
		{"kind":"data","data":[{"kind":"text","text":"Culinária vegana"},{"kind":"text","text":"Gerando análise..."},{"kind":"text","text":"..."}]}
	]}}}`
	resp := post(t, r, body)
	require.Nil(t, resp.Error)
	assert.Equal(t, StateCompleted, resp.Result.(TaskResult).Status.State)
	assert.Equal(t, []string{"Culinária vegana"}, a.seen)
}

func TestFailuresBecomeFailedTasks(t *testing.T) {
	r := newTestServer(t, &stubAnalyzer{err: errors.New("quota exceeded")})

	task := post(t, r, rpc("message/send", "Fitness")).Result.(TaskResult)
	assert.Equal(t, StateFailed, task.Status.State)
	assert.Contains(t, task.Status.Message.Parts[0].Text, "quota exceeded")
	assert.Empty(t, task.Artifacts)

	task = post(t, r, rpc("message/send", "  ")).Result.(TaskResult)
	assert.Equal(t, StateFailed, task.Status.State)
	assert.Equal(t, MsgNichoMissing, task.Status.Message.Parts[0].Text)

	unconfigured := newTestServer(t, nil)
	task = post(t, unconfigured, rpc("message/send", "Fitness")).Result.(TaskResult)
	assert.Equal(t, StateFailed, task.Status.State)
}

func TestTaskEchoesContextID(t *testing.T) {
	r := newTestServer(t, &stubAnalyzer{rec: record.MustParse(`{}`)})
	body := `{"jsonrpc":"2.0","id":"9","method":"message/send","params":{"message":{"kind":"message","role":"user","contextId":"ctx-42","parts":[{"kind":"text","text":"Yoga"}]}}}`

	task := post(t, r, body).Result.(TaskResult)
	assert.Equal(t, StateCompleted, task.Status.State)
	assert.Equal(t, "ctx-42", task.ContextID)
	assert.Equal(t, "ctx-42", task.Status.Message.ContextID)

	missing := strings.Replace(body, "Yoga", " ", 1)
	task = post(t, r, missing).Result.(TaskResult)
	assert.Equal(t, StateFailed, task.Status.State)
	assert.Equal(t, "ctx-42", task.ContextID)

	task = post(t, r, rpc("message/send", "Yoga")).Result.(TaskResult)
	assert.Empty(t, task.ContextID)
}

func TestRPCErrors(t *testing.T) {
	r := newTestServer(t, &stubAnalyzer{})

	resp := post(t, r, `{"jsonrpc":"1.0","id":"1","method":"message/send"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)

	resp = post(t, r, `{"jsonrpc":"2.0","id":"1","method":"tasks/cancel"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)

	resp = post(t, r, `{"jsonrpc":"2.0","id":"1","method":"message/send","params":"nope"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)

	resp = post(t, r, `garbage`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}

func TestDirectMessage(t *testing.T) {
	a := &stubAnalyzer{rec: record.MustParse(`{}`)}
	r := newTestServer(t, a)

	resp := post(t, r, `{"message":{"role":"user","parts":[{"kind":"text","text":"Yoga"}]}}`)
	require.Nil(t, resp.Error)
	assert.Equal(t, "direct-message", resp.ID)
	assert.Equal(t, []string{"Yoga"}, a.seen)
}

func TestAgentCard(t *testing.T) {
	r := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", CardPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var card AgentCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "http://localhost:8080/a2a/analyst", card.URL)
	require.Len(t, card.Skills, 1)
	assert.Equal(t, "avatar-analysis", card.Skills[0].ID)
}
