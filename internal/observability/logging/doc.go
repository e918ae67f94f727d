// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Key features:
//   - JSON and text output formats on stderr
//   - Run ID propagation
//   - Context-aware logging
//   - Configurable log levels
//
// Example usage:
//
//	import "place-digest/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    ctx, runID := logging.WithRunID(context.Background(), logger, "")
//	    logging.FromContext(ctx).Info("collect started", slog.String("run_id", runID))
//	}
package logging
