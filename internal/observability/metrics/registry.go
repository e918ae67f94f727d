// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider metrics track calls to external data providers
var (
	// ProviderRequestsTotal counts provider calls by provider and result
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of external provider requests",
		},
		[]string{"provider", "result"}, // result: success, failure
	)

	// ProviderRequestDuration measures provider call latency in seconds
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "External provider request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider"},
	)

	// CircuitBreakerState exposes the gobreaker state per circuit (0 closed, 1 half-open, 2 open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"circuit"},
	)
)

// Collection metrics track cache usage and batch outcomes
var (
	// CacheLookupsTotal counts cache reads by namespace and result
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of cache store lookups",
		},
		[]string{"namespace", "result"}, // result: hit, miss
	)

	// CollectedRecordsTotal counts records handled by collectors
	CollectedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collected_records_total",
			Help: "Total number of records handled by collectors",
		},
		[]string{"namespace", "outcome"}, // outcome: stored, skipped, failed, invalid
	)

	// CollectDuration measures the duration of one collector run
	CollectDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collect_duration_seconds",
			Help:    "Time taken by one collector run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"namespace"},
	)

	// StaleRatesServedTotal counts reports assembled from an out-of-date rate snapshot
	StaleRatesServedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_rates_served_total",
			Help: "Total number of reports served with a stale currency snapshot",
		},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
