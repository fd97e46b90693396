package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

type fakeModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls int
	parts []genai.Part
}

func (m *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.parts = parts
	return m.resp, m.err
}

func reply(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, genai.Text(t))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func newTestClient(m generator) *GeminiClient {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return &GeminiClient{model: m, limiter: NewLimiter(0, 0), log: log}
}

func TestAnalyze(t *testing.T) {
	m := &fakeModel{resp: reply("```json\n", `{"escopo":{"nicho_principal":"Fitness"}}`, "\n```")}
	c := newTestClient(m)

	rec, err := c.Analyze(context.Background(), models.AnalysisRequest{Nicho: "Fitness"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.calls)

	got, err := record.Accessor{Placeholder: "-"}.Text(rec.Section(record.Escopo), "nicho_principal")
	require.NoError(t, err)
	assert.Equal(t, "Fitness", got)

	prompt, ok := m.parts[0].(genai.Text)
	require.True(t, ok)
	assert.Contains(t, string(prompt), "- Nicho: Fitness")
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		want  error
	}{
		{"transport", &fakeModel{err: errors.New("quota exceeded")}, nil},
		{"no candidates", &fakeModel{resp: &genai.GenerateContentResponse{}}, ErrEmptyResponse},
		{"blank", &fakeModel{resp: reply("  ")}, ErrEmptyResponse},
		{"prose", &fakeModel{resp: reply("Desculpe, não posso ajudar.")}, ErrNoJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestClient(tt.model).Analyze(context.Background(), models.AnalysisRequest{Nicho: "x"})
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, 1, tt.model.calls)
		})
	}
}

func TestAnalyzeRespectsCancelledContext(t *testing.T) {
	m := &fakeModel{resp: reply(`{}`)}
	c := newTestClient(m)
	c.limiter = NewLimiter(1, 1)
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Analyze(ctx, models.AnalysisRequest{Nicho: "x"})
	require.Error(t, err)
	assert.Zero(t, m.calls)
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("Aqui está:\n{\"a\":{\"b\":1}}\nObrigado")
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":1}}`, got)

	_, err = ExtractJSON("} nada {")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestParseReplyRejectsNonObject(t *testing.T) {
	_, err := ParseReply(`{"escopo": }`)
	var malformed *record.MalformedInputError
	assert.ErrorAs(t, err, &malformed)
}

func TestBuildPrompt(t *testing.T) {
	var req models.AnalysisRequest
	require.NoError(t, json.Unmarshal([]byte(`{"nicho":"Culinária","preco":"49.9","dadosAdicionais":"vegano"}`), &req))

	p := BuildPrompt(req)
	assert.Contains(t, p, "- Nicho: Culinária")
	assert.Contains(t, p, "- Preço: R$ 49.9")
	assert.Contains(t, p, "- Produto: Não especificado")
	assert.Contains(t, p, "- Dados Adicionais: vegano")
	for _, key := range record.SectionKeys {
		assert.Contains(t, p, `"`+key+`"`)
	}
}
