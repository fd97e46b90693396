package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	ReportsRendered     *prometheus.CounterVec
	SectionsUnavailable *prometheus.CounterVec
	ExportsTotal        *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avatar_analyses_total",
				Help: "Analysis requests by outcome",
			},
			[]string{"status"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "avatar_analysis_duration_seconds",
				Help:    "Time spent waiting for the analysis model",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
			},
		),
		ReportsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avatar_reports_rendered_total",
				Help: "Composed reports by output format",
			},
			[]string{"format"},
		),
		SectionsUnavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avatar_report_sections_unavailable_total",
				Help: "Sections replaced by the unavailable notice because of malformed input",
			},
			[]string{"section"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avatar_exports_total",
				Help: "Plain-text exports by channel",
			},
			[]string{"channel"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "avatar_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "avatar_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.ReportsRendered,
		m.SectionsUnavailable,
		m.ExportsTotal,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordAnalysis(status string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(status).Inc()
}

// ObserveAnalysis starts a timer; call the returned func when the model
// call returns.
func (m *Metrics) ObserveAnalysis() func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.AnalysisDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordRender(format string, unavailable []string) {
	if m == nil {
		return
	}
	m.ReportsRendered.WithLabelValues(format).Inc()
	for _, section := range unavailable {
		m.SectionsUnavailable.WithLabelValues(section).Inc()
	}
}

func (m *Metrics) RecordExport(channel string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(channel).Inc()
}

func (m *Metrics) RecordHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
