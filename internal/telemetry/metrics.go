// Package telemetry exposes Prometheus counters for pipeline outcomes. The
// durable usage log lives in internal/metrics; these counters are the
// ambient observability layer on top of it.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the askgate pipeline.
type Metrics struct {
	QueryTotal        *prometheus.CounterVec
	QueryDurationMs   *prometheus.HistogramVec
	TokensTotal       *prometheus.CounterVec
	CostUSDTotal      *prometheus.CounterVec
	SafetyActionTotal *prometheus.CounterVec
	FallbackTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		QueryTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "askgate_query_total",
			Help: "Total number of questions processed, by outcome.",
		}, []string{"provider", "model", "outcome"}),

		QueryDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "askgate_query_duration_ms",
			Help:    "End-to-end query duration in milliseconds, including provider latency.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"provider"}),

		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "askgate_tokens_total",
			Help: "Total tokens processed, by direction.",
		}, []string{"provider", "model", "direction"}),

		CostUSDTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "askgate_cost_usd_total",
			Help: "Estimated total cost in USD.",
		}, []string{"provider", "model"}),

		SafetyActionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "askgate_safety_action_total",
			Help: "Total safety gate actions taken.",
		}, []string{"gate", "action"}),

		FallbackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "askgate_fallback_total",
			Help: "Total provider fallback attempts, by the provider that answered.",
		}, []string{"to"}),
	}
}

// QueryLabels holds the label values for recording a completed query.
type QueryLabels struct {
	Provider         string
	Model            string
	Outcome          string // delivered, rejected, blocked, failed, parse_error
	DurationMs       float64
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
}

// RecordQuery records metrics for one completed pipeline run.
func (m *Metrics) RecordQuery(labels QueryLabels) {
	m.QueryTotal.WithLabelValues(labels.Provider, labels.Model, labels.Outcome).Inc()
	m.QueryDurationMs.WithLabelValues(labels.Provider).Observe(labels.DurationMs)

	if labels.PromptTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Provider, labels.Model, "prompt").Add(float64(labels.PromptTokens))
	}
	if labels.CompletionTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Provider, labels.Model, "completion").Add(float64(labels.CompletionTokens))
	}
	if labels.CostUSD > 0 {
		m.CostUSDTotal.WithLabelValues(labels.Provider, labels.Model).Add(labels.CostUSD)
	}
}

// RecordSafetyAction records one safety gate decision.
func (m *Metrics) RecordSafetyAction(gate, action string) {
	m.SafetyActionTotal.WithLabelValues(gate, action).Inc()
}

// RecordFallback records a fallback attempt that landed on the named provider.
func (m *Metrics) RecordFallback(to string) {
	m.FallbackTotal.WithLabelValues(to).Inc()
}
