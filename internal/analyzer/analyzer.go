// Package analyzer obtains analysis records from the Gemini model.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

var (
	ErrEmptyResponse = errors.New("model returned no content")
	ErrNoJSON        = errors.New("model reply contains no JSON object")
)

// Analyzer produces an analysis record for a request.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (record.AnalysisRecord, error)
}

// generator is the part of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Options struct {
	APIKey string
	Model  string
	// RPM and Burst pace model calls; RPM <= 0 disables pacing.
	RPM   int
	Burst int
}

type GeminiClient struct {
	client  *genai.Client
	model   generator
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

func NewGeminiClient(ctx context.Context, opts Options, log logrus.FieldLogger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(0.3)
	model.SetTopP(0.8)
	model.SetMaxOutputTokens(8192)
	model.ResponseMIMEType = "application/json"

	return &GeminiClient{
		client:  client,
		model:   model,
		limiter: NewLimiter(opts.RPM, opts.Burst),
		log:     log,
	}, nil
}

// NewLimiter spaces calls evenly over a minute.
func NewLimiter(rpm, burst int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Analyze asks the model for a full analysis of req. It does not retry.
func (g *GeminiClient) Analyze(ctx context.Context, req models.AnalysisRequest) (record.AnalysisRecord, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return record.AnalysisRecord{}, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(req)))
	if err != nil {
		return record.AnalysisRecord{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return record.AnalysisRecord{}, ErrEmptyResponse
	}
	g.log.WithFields(logrus.Fields{
		"nicho":   req.Nicho,
		"bytes":   len(text),
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("analysis generated")

	return ParseReply(text)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// ExtractJSON returns the span from the first '{' to the last '}' of
// the model reply, which drops markdown fences and any chatter around
// the object.
func ExtractJSON(reply string) (string, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return "", ErrNoJSON
	}
	return reply[start : end+1], nil
}

// ParseReply extracts and validates the record in a model reply.
func ParseReply(reply string) (record.AnalysisRecord, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return record.AnalysisRecord{}, err
	}
	rec, err := record.Parse([]byte(raw))
	if err != nil {
		return record.AnalysisRecord{}, fmt.Errorf("invalid analysis JSON: %w", err)
	}
	return rec, nil
}
