package metrics

import "time"

// RecordProviderRequest records one provider call and its latency.
func RecordProviderRequest(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ProviderRequestsTotal.WithLabelValues(provider, result).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordCircuitState publishes the state of a circuit breaker.
func RecordCircuitState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}

// RecordCacheLookup records a cache hit or miss for namespace.
func RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(namespace, result).Inc()
}

// RecordCollected adds count records with the given outcome.
// Outcome should be one of "stored", "skipped", "failed", "invalid".
func RecordCollected(namespace, outcome string, count int) {
	if count <= 0 {
		return
	}
	CollectedRecordsTotal.WithLabelValues(namespace, outcome).Add(float64(count))
}

// RecordCollectDuration records the time one collector run took.
func RecordCollectDuration(namespace string, duration time.Duration) {
	CollectDuration.WithLabelValues(namespace).Observe(duration.Seconds())
}

// RecordStaleRatesServed counts a report built from a stale rate snapshot.
func RecordStaleRatesServed() {
	StaleRatesServedTotal.Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "cache_read", "cache_write_batch").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
