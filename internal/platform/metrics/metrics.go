// Package metrics holds the Prometheus collectors shared by the services.
// Everything registers on the default registry, which /metrics exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts outgoing gateway calls by upstream, operation and outcome
	// ("ok", "http_error", "transport_error", "rejected").
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animelist_upstream_requests_total",
			Help: "Outgoing requests to the catalog and list backends",
		},
		[]string{"upstream", "operation", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animelist_upstream_request_duration_seconds",
			Help:    "Latency of outgoing gateway requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "operation"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animelist_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animelist_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	ListMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animelist_list_mutations_total",
			Help: "List entry mutations handled by the backend",
		},
		[]string{"operation", "outcome"},
	)
)
