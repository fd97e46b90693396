// Package storage persists analysis requests, their results and the
// per-niche example templates.
package storage

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

var ErrNotFound = errors.New("not found")

// Store is implemented by Postgres and by the in-memory store.
type Store interface {
	CreatePending(ctx context.Context, req models.AnalysisRequest) (int64, error)
	Complete(ctx context.Context, id int64, rec record.AnalysisRecord) error
	Fail(ctx context.Context, id int64, reason string) error
	Get(ctx context.Context, id int64) (models.StoredAnalysis, error)
	List(ctx context.Context, limit int, nicho string) ([]models.AnalysisSummary, error)
	Nichos(ctx context.Context) ([]models.NichoCount, error)
	SearchNichos(ctx context.Context, search string, limit int) ([]string, error)
	Template(ctx context.Context, nicho string) (models.Template, error)
	SeedTemplates(ctx context.Context, templates []models.Template) error
	Ping(ctx context.Context) error
	Close() error
}

// sectionBlobs splits a record into one JSON blob per section. Absent
// sections map to nil.
func sectionBlobs(rec record.AnalysisRecord) map[string][]byte {
	blobs := make(map[string][]byte, len(record.SectionKeys))
	for _, key := range record.SectionKeys {
		if raw, ok := rec.SectionJSON(key); ok {
			blobs[key] = raw
		} else {
			blobs[key] = nil
		}
	}
	return blobs
}

// MatchNichos keeps the distinct names containing search, compared
// case-insensitively, sorted and capped at limit.
func MatchNichos(names []string, search string, limit int) []string {
	needle := strings.ToLower(strings.TrimSpace(search))
	seen := make(map[string]bool)
	var out []string
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(n), needle) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
