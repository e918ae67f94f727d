// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Provider request metrics (count, latency, circuit state)
//   - Collection metrics (cache hits, batch outcomes, run duration)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint when the CLI runs with -metrics-addr.
//
// Example usage:
//
//	import "place-digest/internal/observability/metrics"
//
//	func collect(ctx context.Context) {
//	    start := time.Now()
//	    // ... fetch and store ...
//	    metrics.RecordCollected("weather", "stored", 12)
//	    metrics.RecordCollectDuration("weather", time.Since(start))
//	}
package metrics
