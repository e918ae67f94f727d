package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"place-digest/internal/domain/entity"
	"place-digest/internal/observability/logging"
	"place-digest/internal/observability/metrics"
	"place-digest/internal/observability/tracing"
	"place-digest/internal/repository"
)

// DefaultParallelism bounds concurrent provider calls of one batch.
const DefaultParallelism = 5

// Policy decides what a batch does with keys that are already cached.
type Policy int

const (
	// SkipCached returns cached records without a fetch.
	SkipCached Policy = iota
	// Refetch fetches every distinct key.
	Refetch
)

func (p Policy) String() string {
	switch p {
	case SkipCached:
		return "skip_cached"
	case Refetch:
		return "refetch"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// batchCollector is the shared fan-out used by the per-location collectors.
type batchCollector[V any] struct {
	namespace   repository.Namespace
	store       repository.CacheStore[V]
	fetch       func(ctx context.Context, key entity.LocationKey) (V, error)
	parallelism int
}

func newBatchCollector[V any](
	namespace repository.Namespace,
	store repository.CacheStore[V],
	parallelism int,
	fetch func(ctx context.Context, key entity.LocationKey) (V, error),
) batchCollector[V] {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return batchCollector[V]{namespace: namespace, store: store, fetch: fetch, parallelism: parallelism}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// collect gathers a record per distinct key. A key whose fetch, normalization
// or write fails is logged and left out of the result; only cancellation of
// ctx aborts the batch.
func (b *batchCollector[V]) collect(ctx context.Context, keys []entity.LocationKey, policy Policy) (map[entity.LocationKey]V, error) {
	ns := string(b.namespace)
	ctx, span := tracing.GetTracer().Start(ctx, "collect."+ns,
		trace.WithAttributes(
			attribute.Int("keys", len(keys)),
			attribute.String("policy", policy.String()),
		))
	defer span.End()

	logger := logging.FromContext(ctx)
	start := time.Now()
	defer func() { metrics.RecordCollectDuration(ns, time.Since(start)) }()

	distinct := entity.DedupLocations(keys)
	result := make(map[entity.LocationKey]V, len(distinct))
	var mu sync.Mutex
	var fetched, cached, failed int

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallelism)

	for _, k := range distinct {
		key := k
		if err := validateKey(key); err != nil {
			failed++
			metrics.RecordCollected(ns, "invalid", 1)
			logger.Warn("invalid location key, skipping",
				slog.String("namespace", ns),
				slog.String("key", key.String()),
				slog.Any("error", err))
			continue
		}
		eg.Go(func() error {
			if policy == SkipCached {
				rec, err := b.store.Read(egCtx, key.String())
				if err != nil {
					if isContextErr(err) {
						return err
					}
					logger.Warn("cache read failed, fetching",
						slog.String("namespace", ns),
						slog.String("key", key.String()),
						slog.Any("error", err))
				}
				metrics.RecordCacheLookup(ns, rec != nil)
				if rec != nil {
					mu.Lock()
					result[key] = *rec
					cached++
					mu.Unlock()
					return nil
				}
			}

			rec, err := b.fetch(egCtx, key)
			if err == nil {
				err = b.store.Write(egCtx, key.String(), rec)
			}
			if err != nil {
				if isContextErr(err) {
					return err
				}
				mu.Lock()
				failed++
				mu.Unlock()
				metrics.RecordCollected(ns, "failed", 1)
				logger.Warn("collect failed, skipping location",
					slog.String("namespace", ns),
					slog.String("key", key.String()),
					slog.Any("error", err))
				return nil
			}

			mu.Lock()
			result[key] = rec
			fetched++
			mu.Unlock()
			metrics.RecordCollected(ns, "stored", 1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch aborted")
		return nil, fmt.Errorf("collect %s: %w", ns, err)
	}
	metrics.RecordCollected(ns, "skipped", cached)

	logger.Info("batch collected",
		slog.String("namespace", ns),
		slog.String("policy", policy.String()),
		slog.Int("keys", len(distinct)),
		slog.Int("fetched", fetched),
		slog.Int("cached", cached),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (b *batchCollector[V]) read(ctx context.Context, key entity.LocationKey) (*V, error) {
	rec, err := b.store.Read(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", b.namespace, key, err)
	}
	return rec, nil
}
