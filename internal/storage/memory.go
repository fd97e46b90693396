package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
)

// Memory is a Store kept in process memory. Section blobs are stored
// separately, as in Postgres, and reassembled on read.
type Memory struct {
	mu        sync.RWMutex
	nextID    int64
	rows      map[int64]*memoryRow
	templates map[string]models.Template
	now       func() time.Time
}

type memoryRow struct {
	analysis models.StoredAnalysis
	blobs    map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		rows:      make(map[int64]*memoryRow),
		templates: make(map[string]models.Template),
		now:       time.Now,
	}
}

func (m *Memory) CreatePending(_ context.Context, req models.AnalysisRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := m.now()
	m.rows[m.nextID] = &memoryRow{analysis: models.StoredAnalysis{
		ID:        m.nextID,
		Request:   req,
		Status:    models.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	return m.nextID, nil
}

func (m *Memory) Complete(_ context.Context, id int64, rec record.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.blobs = sectionBlobs(rec)
	row.analysis.Status = models.StatusCompleted
	row.analysis.Error = ""
	row.analysis.UpdatedAt = m.now()
	return nil
}

func (m *Memory) Fail(_ context.Context, id int64, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	row.analysis.Status = models.StatusFailed
	row.analysis.Error = reason
	row.analysis.UpdatedAt = m.now()
	return nil
}

func (m *Memory) Get(_ context.Context, id int64) (models.StoredAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return models.StoredAnalysis{}, ErrNotFound
	}
	a := row.analysis
	if a.Status == models.StatusCompleted {
		rec, err := record.Assemble(row.blobs)
		if err != nil {
			return models.StoredAnalysis{}, err
		}
		a.Record = rec
	}
	return a, nil
}

func (m *Memory) List(_ context.Context, limit int, nicho string) ([]models.AnalysisSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.AnalysisSummary{}
	for _, row := range m.rows {
		if nicho != "" && row.analysis.Request.Nicho != nicho {
			continue
		}
		out = append(out, row.analysis.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Nichos(_ context.Context) ([]models.NichoCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, row := range m.rows {
		if n := row.analysis.Request.Nicho; n != "" {
			counts[n]++
		}
	}
	out := make([]models.NichoCount, 0, len(counts))
	for n, c := range counts {
		out = append(out, models.NichoCount{Nicho: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nicho < out[j].Nicho })
	return out, nil
}

func (m *Memory) SearchNichos(_ context.Context, search string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.rows)+len(m.templates))
	for _, row := range m.rows {
		names = append(names, row.analysis.Request.Nicho)
	}
	for _, t := range m.templates {
		names = append(names, t.Nicho)
	}
	return MatchNichos(names, search, limit), nil
}

func (m *Memory) Template(_ context.Context, nicho string) (models.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[strings.ToLower(strings.TrimSpace(nicho))]
	if !ok {
		return models.Template{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) SeedTemplates(_ context.Context, templates []models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range templates {
		key := strings.ToLower(t.Nicho)
		if _, ok := m.templates[key]; !ok {
			m.templates[key] = t
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
