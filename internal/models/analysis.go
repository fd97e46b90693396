package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

// Analysis status values stored with every request.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// AnalysisRequest is the body of POST /api/analyze. Only Nicho is
// required.
type AnalysisRequest struct {
	Nicho              string        `json:"nicho"`
	Produto            string        `json:"produto,omitempty"`
	Descricao          string        `json:"descricao,omitempty"`
	Preco              OptionalFloat `json:"preco"`
	Publico            string        `json:"publico,omitempty"`
	Concorrentes       string        `json:"concorrentes,omitempty"`
	DadosAdicionais    string        `json:"dados_adicionais,omitempty"`
	ObjetivoReceita    FlexString    `json:"objetivo_receita,omitempty"`
	OrcamentoMarketing FlexString    `json:"orcamento_marketing,omitempty"`
	PrazoLancamento    string        `json:"prazo_lancamento,omitempty"`
}

// UnmarshalJSON also accepts the camelCase dadosAdicionais key sent by
// the web form.
func (r *AnalysisRequest) UnmarshalJSON(data []byte) error {
	type plain AnalysisRequest
	aux := struct {
		*plain
		DadosAdicionaisCamel string `json:"dadosAdicionais"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.DadosAdicionais == "" {
		r.DadosAdicionais = aux.DadosAdicionaisCamel
	}
	return nil
}

// Normalize trims every free-text input.
func (r *AnalysisRequest) Normalize() {
	for _, s := range []*string{
		&r.Nicho, &r.Produto, &r.Descricao, &r.Publico,
		&r.Concorrentes, &r.DadosAdicionais, &r.PrazoLancamento,
	} {
		*s = strings.TrimSpace(*s)
	}
	r.ObjetivoReceita = FlexString(strings.TrimSpace(string(r.ObjetivoReceita)))
	r.OrcamentoMarketing = FlexString(strings.TrimSpace(string(r.OrcamentoMarketing)))
}

// OptionalFloat decodes a number or a numeric string. Anything else,
// including unparsable text, decodes as not set.
type OptionalFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) OptionalFloat { return OptionalFloat{Value: v, Valid: true} }

func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	*f = OptionalFloat{}
	data = bytes.TrimSpace(data)
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = Float(v)
	}
	return nil
}

func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// String renders the value for prompts and text, empty when not set.
func (f OptionalFloat) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// FlexString accepts a JSON string or number.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	default:
		*s = FlexString(data)
	}
	return nil
}

// ErrorPayload is the body of every error response.
type ErrorPayload struct {
	Error string `json:"error"`
}

// AnalysisSummary is one row of GET /api/analyses.
type AnalysisSummary struct {
	ID        int64     `json:"id"`
	Nicho     string    `json:"nicho"`
	Produto   string    `json:"produto"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredAnalysis is a persisted request together with its result.
type StoredAnalysis struct {
	ID        int64                 `json:"id"`
	Request   AnalysisRequest       `json:"request"`
	Status    string                `json:"status"`
	Error     string                `json:"error,omitempty"`
	Record    record.AnalysisRecord `json:"analysis"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func (a StoredAnalysis) Summary() AnalysisSummary {
	return AnalysisSummary{
		ID:        a.ID,
		Nicho:     a.Request.Nicho,
		Produto:   a.Request.Produto,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

// Template is an example analysis used to pre-fill the form for a niche.
type Template struct {
	Nicho  string                `json:"nicho"`
	Name   string                `json:"name"`
	Record record.AnalysisRecord `json:"analysis"`
}

type NichoSearchRequest struct {
	Search string `json:"search"`
}

type NichoSearchResponse struct {
	Nichos []string `json:"nichos"`
}

type NichoCount struct {
	Nicho string `json:"nicho"`
	Count int    `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	GeminiStatus   string `json:"gemini_status"`
	DatabaseStatus string `json:"database_status"`
}
