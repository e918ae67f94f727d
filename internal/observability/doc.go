// Package observability provides the observability infrastructure of the
// place digest: structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//   - tracing: OpenTelemetry tracer access
//
// Example usage:
//
//	import (
//	    "place-digest/internal/observability/logging"
//	    "place-digest/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("collect started")
//
//	    metrics.RecordCacheLookup("weather", true)
//	}
package observability
