package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nani"

// Metrics holds the service's Prometheus collectors
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	FallbackOutcomes  *prometheus.CounterVec
	CartAdditions     *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	SearchIndexErrors *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
		FallbackOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "strategy_outcomes_total",
			Help:      "Search fallback strategy attempts by chain, strategy and outcome.",
		}, []string{"chain", "strategy", "outcome"}),
		CartAdditions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "cart_additions_total",
			Help:      "Products the assistant added to carts, by resolution path.",
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		SearchIndexErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "index_errors_total",
			Help:      "Failed search index requests by index.",
		}, []string{"index"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.FallbackOutcomes,
		m.CartAdditions,
		m.CacheLookups,
		m.SearchIndexErrors,
	)
	return m
}

// RecordFallback counts one fallback strategy attempt
func (m *Metrics) RecordFallback(chain, strategy, outcome string) {
	m.FallbackOutcomes.WithLabelValues(chain, strategy, outcome).Inc()
}

// RecordCartAdditions counts products added by the assistant
func (m *Metrics) RecordCartAdditions(source string, n int) {
	if n > 0 {
		m.CartAdditions.WithLabelValues(source).Add(float64(n))
	}
}

// RecordCacheLookup counts a cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordSearchError counts a failed search index request
func (m *Metrics) RecordSearchError(index string) {
	m.SearchIndexErrors.WithLabelValues(index).Inc()
}
