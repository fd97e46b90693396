// Package service coordinates acquisition, persistence and rendering of
// avatar analyses for the HTTP and A2A front ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/avatar-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/avatar-analyzer/internal/export"
	"github.com/BerylCAtieno/avatar-analyzer/internal/metrics"
	"github.com/BerylCAtieno/avatar-analyzer/internal/models"
	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
	"github.com/BerylCAtieno/avatar-analyzer/internal/record"
	"github.com/BerylCAtieno/avatar-analyzer/internal/report"
	"github.com/BerylCAtieno/avatar-analyzer/internal/storage"
)

var (
	ErrNichoRequired       = errors.New("nicho is required")
	ErrStorageDisabled     = errors.New("storage is not configured")
	ErrAnalyzerUnavailable = errors.New("analyzer is not configured")
	ErrAnalysisFailed      = errors.New("analysis failed")
	ErrNotFound            = storage.ErrNotFound
)

const (
	DefaultListLimit   = 10
	MaxListLimit       = 100
	DefaultSearchLimit = 10

	// ShareLink is the header share action target; the page handles it.
	ShareLink = "#"
)

type Options struct {
	Analyzer analyzer.Analyzer
	Store    storage.Store
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
	Log      logrus.FieldLogger
}

type Service struct {
	analyzer  analyzer.Analyzer
	store     storage.Store
	notifier  *notify.Notifier
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	templates []models.Template
	now       func() time.Time
}

// Result is the outcome of a successful analysis. ID is zero when the
// service runs without storage.
type Result struct {
	ID     int64
	Record record.AnalysisRecord
}

func New(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	templates, err := storage.DefaultTemplates()
	if err != nil {
		log.WithError(err).Warn("Embedded templates unavailable")
	}
	return &Service{
		analyzer:  opts.Analyzer,
		store:     opts.Store,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		log:       log,
		templates: templates,
		now:       time.Now,
	}
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func (s *Service) AnalyzerConfigured() bool { return s.analyzer != nil }
func (s *Service) StorageConfigured() bool  { return s.store != nil }

// Ping checks the storage connection.
func (s *Service) Ping(ctx context.Context) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.Ping(ctx)
}

// Analyze validates req, records it as processing, asks the analyzer for
// a record and stores the outcome. Acquisition is attempted once.
func (s *Service) Analyze(ctx context.Context, req models.AnalysisRequest) (Result, error) {
	req.Normalize()
	if req.Nicho == "" {
		return Result{}, ErrNichoRequired
	}
	if s.analyzer == nil {
		return Result{}, ErrAnalyzerUnavailable
	}

	log := s.log.WithField("nicho", req.Nicho)

	var id int64
	if s.store != nil {
		var err error
		id, err = s.store.CreatePending(ctx, req)
		if err != nil {
			return Result{}, fmt.Errorf("failed to store request: %w", err)
		}
		log = log.WithField("analysis_id", id)
	}

	log.Info("Starting analysis")
	done := s.metrics.ObserveAnalysis()
	rec, err := s.analyzer.Analyze(ctx, req)
	done()

	if err != nil {
		log.WithError(err).Error("Analysis failed")
		s.metrics.RecordAnalysis(models.StatusFailed)
		s.notifier.Error("Não foi possível gerar a análise. Tente novamente.")
		if id != 0 {
			if ferr := s.store.Fail(ctx, id, err.Error()); ferr != nil {
				log.WithError(ferr).Warn("Failed to mark analysis as failed")
			}
		}
		return Result{ID: id}, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	if id != 0 {
		if err := s.store.Complete(ctx, id, rec); err != nil {
			log.WithError(err).Error("Failed to store analysis")
			s.metrics.RecordAnalysis(models.StatusFailed)
			s.notifier.Error("Não foi possível salvar a análise. Tente novamente.")
			if ferr := s.store.Fail(ctx, id, err.Error()); ferr != nil {
				log.WithError(ferr).Warn("Failed to mark analysis as failed")
			}
			return Result{ID: id}, fmt.Errorf("failed to store analysis %d: %w", id, err)
		}
	}

	s.metrics.RecordAnalysis(models.StatusCompleted)
	s.notifier.Success("Análise concluída com sucesso!")
	log.Info("Analysis completed")
	return Result{ID: id, Record: rec}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.StoredAnalysis, error) {
	if s.store == nil {
		return models.StoredAnalysis{}, ErrStorageDisabled
	}
	return s.store.Get(ctx, id)
}

// List returns stored analyses newest first. A non-positive limit means
// DefaultListLimit; larger limits are capped at MaxListLimit.
func (s *Service) List(ctx context.Context, limit int, nicho string) ([]models.AnalysisSummary, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.List(ctx, ClampLimit(limit), strings.TrimSpace(nicho))
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func (s *Service) Nichos(ctx context.Context) ([]models.NichoCount, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.Nichos(ctx)
}

// SearchNichos suggests niches from stored analyses and templates. Without
// storage only the embedded templates are searched.
func (s *Service) SearchNichos(ctx context.Context, search string) ([]string, error) {
	if s.store == nil {
		names := make([]string, 0, len(s.templates))
		for _, t := range s.templates {
			names = append(names, t.Nicho)
		}
		return storage.MatchNichos(names, search, DefaultSearchLimit), nil
	}
	return s.store.SearchNichos(ctx, search, DefaultSearchLimit)
}

// Template returns the example analysis for nicho, falling back to the
// embedded set when storage has none.
func (s *Service) Template(ctx context.Context, nicho string) (models.Template, error) {
	if s.store != nil {
		t, err := s.store.Template(ctx, nicho)
		if err == nil || !errors.Is(err, storage.ErrNotFound) {
			return t, err
		}
	}
	key := strings.ToLower(strings.TrimSpace(nicho))
	for _, t := range s.templates {
		if strings.ToLower(t.Nicho) == key {
			return t, nil
		}
	}
	return models.Template{}, ErrNotFound
}

// LinksFor returns the header action targets for a stored analysis.
func LinksFor(id int64) report.Links {
	return report.Links{
		Download: fmt.Sprintf("/api/analyses/%d/export", id),
		Share:    ShareLink,
	}
}

// View composes rec with tab selected (unknown tabs are ignored).
func (s *Service) View(rec record.AnalysisRecord, links report.Links, tab string) report.ReportView {
	ctx := report.NewRenderContext(rec, links, io.Discard)
	s.selectTab(ctx, tab)
	view := ctx.View()
	s.recordRender("json", view)
	return view
}

// RenderHTML writes the HTML report for rec to w.
func (s *Service) RenderHTML(w io.Writer, rec record.AnalysisRecord, links report.Links, tab string) error {
	rc := report.NewRenderContext(rec, links, w)
	s.selectTab(rc, tab)
	s.recordRender("html", rc.View())
	if err := rc.Render(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// Export writes the plain-text report and returns the download name.
func (s *Service) Export(w io.Writer, rec record.AnalysisRecord, channel string) (string, error) {
	now := s.now()
	if err := export.Write(w, rec, now); err != nil {
		return "", fmt.Errorf("failed to export report: %w", err)
	}
	s.metrics.RecordExport(channel)
	return export.Filename(now), nil
}

// ExportText is Export into a string.
func (s *Service) ExportText(rec record.AnalysisRecord, channel string) string {
	text := export.Export(rec, s.now())
	s.metrics.RecordExport(channel)
	return text
}

func (s *Service) selectTab(ctx *report.RenderContext, tab string) {
	if tab == "" {
		return
	}
	if !ctx.SelectTab(tab) && !report.ValidTab(tab) {
		s.log.WithField("tab", tab).Debug("Ignoring unknown tab")
	}
}

func (s *Service) recordRender(format string, view report.ReportView) {
	var keys []string
	for _, f := range view.Unavailable() {
		keys = append(keys, f.Key)
		s.log.WithFields(logrus.Fields{
			"section": f.Key,
			"reason":  f.Reason,
		}).Warn("Section unavailable")
	}
	s.metrics.RecordRender(format, keys)
}
