// Package metrics provides Prometheus metrics for the content-ops service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	FallbacksTotal     *prometheus.CounterVec
	RejectedTotal      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentops_generations_total",
				Help: "Generation service calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contentops_generation_duration_seconds",
				Help:    "Generation service call latency by operation.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentops_fallbacks_total",
				Help: "Locally synthesized results used after a failed generation.",
			},
			[]string{"operation"},
		),
		RejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentops_rejected_total",
				Help: "Operations rejected by a store guard, by reason.",
			},
			[]string{"operation", "reason"},
		),
		registry: reg,
	}

	reg.MustRegister(m.GenerationsTotal)
	reg.MustRegister(m.GenerationDuration)
	reg.MustRegister(m.FallbacksTotal)
	reg.MustRegister(m.RejectedTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordGeneration counts one generation call and observes its latency.
func (m *Metrics) RecordGeneration(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GenerationsTotal.WithLabelValues(operation, outcome).Inc()
	m.GenerationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordFallback counts a locally synthesized result.
func (m *Metrics) RecordFallback(operation string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(operation).Inc()
}

// RecordRejected counts an operation turned away by a guard.
func (m *Metrics) RecordRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.RejectedTotal.WithLabelValues(operation, reason).Inc()
}
