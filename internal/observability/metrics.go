// Package observability exposes Prometheus metrics for the session
// orchestration engine.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements session.CycleObserver and tracks service-level
// counters. One instance is created at process start and shared by every
// orchestrator.
type Metrics struct {
	transcriptionsTotal prometheus.Counter
	transcribedBytes    prometheus.Counter
	suggestionsTotal    prometheus.Counter
	cycleErrorsTotal    *prometheus.CounterVec
	activeSessions      prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers the metric set on a private registry.
func New() *Metrics {
	m := &Metrics{
		transcriptionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coco_transcriptions_total",
			Help: "Total number of non-empty transcriptions processed",
		}),
		transcribedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coco_transcribed_bytes_total",
			Help: "Total audio bytes drained for transcription",
		}),
		suggestionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coco_suggestions_total",
			Help: "Total number of coaching suggestions emitted",
		}),
		cycleErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coco_cycle_errors_total",
			Help: "Analysis cycle errors by stage",
		}, []string{"stage"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coco_active_sessions",
			Help: "Number of sessions currently streaming",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.transcriptionsTotal,
		m.transcribedBytes,
		m.suggestionsTotal,
		m.cycleErrorsTotal,
		m.activeSessions,
	)
	return m
}

func (m *Metrics) TranscriptionProcessed(bytes int) {
	m.transcriptionsTotal.Inc()
	m.transcribedBytes.Add(float64(bytes))
}

func (m *Metrics) SuggestionEmitted() {
	m.suggestionsTotal.Inc()
}

func (m *Metrics) CycleError(stage string) {
	m.cycleErrorsTotal.WithLabelValues(stage).Inc()
}

// SessionStarted and SessionEnded track the active-session gauge from the
// transport adapter.
func (m *Metrics) SessionStarted() { m.activeSessions.Inc() }
func (m *Metrics) SessionEnded()   { m.activeSessions.Dec() }

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
