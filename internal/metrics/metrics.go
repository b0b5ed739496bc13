// Package metrics provides Prometheus metrics for cinekhobor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinekhobor"

// Search outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeFetched  = "fetched"
	OutcomeError    = "error"
)

var (
	// SearchTotal counts searches by outcome.
	SearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_total",
			Help:      "Total number of searches by outcome",
		},
		[]string{"outcome"},
	)

	// FetchDuration measures upstream search latency.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream news searches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// VerdictsTotal counts classified articles by verdict reason.
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Fetched articles by relevance verdict",
		},
		[]string{"reason"},
	)

	// HTTPRequestsTotal counts web requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordSearch records one search outcome.
func RecordSearch(outcome string) {
	SearchTotal.WithLabelValues(outcome).Inc()
}

// RecordFetch records the latency of one upstream call.
func RecordFetch(provider string, seconds float64) {
	FetchDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordVerdicts adds a per-reason tally.
func RecordVerdicts(tally map[string]int) {
	for reason, n := range tally {
		VerdictsTotal.WithLabelValues(reason).Add(float64(n))
	}
}
