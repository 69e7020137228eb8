// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups quiz collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	generationOutcomes *prometheus.CounterVec
	generationDuration prometheus.Histogram
	accessDenied       *prometheus.CounterVec
	quizzesCompleted   *prometheus.CounterVec
	activeSessions     prometheus.Gauge
}

// New registers collectors on reg (use prometheus.DefaultRegisterer in production).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		generationOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_generation_total",
				Help: "Quiz generation attempts by outcome",
			},
			[]string{"outcome"}, // ok, cached, network_failure, contract_violation
		),
		generationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quiz_generation_duration_seconds",
				Help:    "Time spent waiting on the generation provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		accessDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_access_denied_total",
				Help: "Generation requests refused by the access gate",
			},
			[]string{"reason"},
		),
		quizzesCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_completed_total",
				Help: "Finished quiz sessions by performance band",
			},
			[]string{"band"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "quiz_sessions_active",
				Help: "Server-hosted quiz sessions currently held in memory",
			},
		),
	}
}

// GenerationOutcome counts one generation attempt.
func (m *Metrics) GenerationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.generationOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveGeneration records provider latency.
func (m *Metrics) ObserveGeneration(d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.Observe(d.Seconds())
}

// AccessDenied counts a gate refusal.
func (m *Metrics) AccessDenied(reason string) {
	if m == nil {
		return
	}
	m.accessDenied.WithLabelValues(reason).Inc()
}

// QuizCompleted counts a finished session.
func (m *Metrics) QuizCompleted(band string) {
	if m == nil {
		return
	}
	m.quizzesCompleted.WithLabelValues(band).Inc()
}

// SetActiveSessions reports the registry size.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
