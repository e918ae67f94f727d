// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created against the global tracer provider, so they are no-ops
// until a provider is installed (tests install an in-memory one via tracetest).
//
// Example usage:
//
//	import "place-digest/internal/observability/tracing"
//
//	func collect(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "collect.weather")
//	    defer span.End()
//	    // ...
//	}
package tracing
