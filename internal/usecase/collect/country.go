package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"place-digest/internal/domain/entity"
	"place-digest/internal/observability/logging"
	"place-digest/internal/observability/metrics"
	"place-digest/internal/observability/tracing"
	"place-digest/internal/repository"
)

// CountryCollector maintains the cached country directory.
// The directory is reference data: it is only re-collected on explicit request.
type CountryCollector struct {
	provider CountryProvider
	store    repository.CountryStore
}

func NewCountryCollector(provider CountryProvider, store repository.CountryStore) *CountryCollector {
	return &CountryCollector{provider: provider, store: store}
}

// Collect fetches the whole directory, normalizes and deduplicates it by
// location key, and writes it in one batch. It returns the written records
// ordered by key.
//
// A provider failure writes nothing. Entries that fail normalization are
// skipped with a warning; if no entry survives, the first normalization error
// is returned and nothing is written.
func (c *CountryCollector) Collect(ctx context.Context) ([]entity.CountryRecord, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "collect.countries")
	defer span.End()

	logger := logging.FromContext(ctx)
	ns := string(repository.NamespaceCountries)
	start := time.Now()
	defer func() { metrics.RecordCollectDuration(ns, time.Since(start)) }()

	raws, err := c.provider.FetchCountries(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch countries")
		return nil, fmt.Errorf("fetch countries: %w", err)
	}

	records := make(map[string]entity.CountryRecord, len(raws))
	var firstErr error
	invalid, duplicated := 0, 0
	for i, raw := range raws {
		rec, err := normalizeCountry(raw)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			invalid++
			logger.Warn("skipping country entry",
				slog.Int("index", i),
				slog.Any("error", err))
			continue
		}
		key := rec.Key().String()
		if _, ok := records[key]; ok {
			duplicated++
			continue
		}
		records[key] = rec
	}
	metrics.RecordCollected(ns, "invalid", invalid)
	metrics.RecordCollected(ns, "skipped", duplicated)

	if len(records) == 0 {
		if firstErr == nil {
			firstErr = &entity.NormalizationError{Entity: "country directory", Err: errors.New("provider returned no countries")}
		}
		span.RecordError(firstErr)
		span.SetStatus(codes.Error, "normalize countries")
		return nil, firstErr
	}

	if err := c.store.ReplaceAll(ctx, records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write countries")
		return nil, fmt.Errorf("write countries: %w", err)
	}
	metrics.RecordCollected(ns, "stored", len(records))
	span.SetAttributes(attribute.Int("countries", len(records)))

	out := make([]entity.CountryRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().String() < out[j].Key().String() })

	logger.Info("country directory collected",
		slog.Int("entries", len(raws)),
		slog.Int("stored", len(out)),
		slog.Int("invalid", invalid),
		slog.Int("duplicated", duplicated),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

// Read returns the cached directory ordered by key, without network access.
func (c *CountryCollector) Read(ctx context.Context) ([]entity.CountryRecord, error) {
	records, err := c.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read countries: %w", err)
	}
	return records, nil
}
