package collect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"place-digest/internal/domain/entity"
	"place-digest/internal/observability/logging"
	"place-digest/internal/observability/metrics"
	"place-digest/internal/observability/tracing"
	"place-digest/internal/repository"
)

// CurrencyRatesCollector keeps one rate snapshot per base currency.
// It never checks freshness itself: Collect always fetches.
type CurrencyRatesCollector struct {
	provider CurrencyProvider
	store    repository.RatesStore
	now      func() time.Time
}

// NewCurrencyRatesCollector creates a collector. A nil now uses time.Now.
func NewCurrencyRatesCollector(provider CurrencyProvider, store repository.RatesStore, now func() time.Time) *CurrencyRatesCollector {
	if now == nil {
		now = time.Now
	}
	return &CurrencyRatesCollector{provider: provider, store: store, now: now}
}

func normalizeBase(base string) string {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return entity.DefaultBaseCurrency
	}
	return base
}

// Collect fetches the latest rates for base, stamps today's date and stores the snapshot.
// An empty base means RUB.
func (c *CurrencyRatesCollector) Collect(ctx context.Context, base string) (*entity.CurrencyRatesSnapshot, error) {
	base = normalizeBase(base)
	ctx, span := tracing.GetTracer().Start(ctx, "collect.currency_rates",
		trace.WithAttributes(attribute.String("base", base)))
	defer span.End()

	ns := string(repository.NamespaceCurrencyRates)
	start := time.Now()
	defer func() { metrics.RecordCollectDuration(ns, time.Since(start)) }()

	raw, err := c.provider.FetchRates(ctx, base)
	if err != nil {
		metrics.RecordCollected(ns, "failed", 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch rates")
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}

	snap, err := normalizeRates(raw, base, c.now())
	if err != nil {
		metrics.RecordCollected(ns, "invalid", 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "normalize rates")
		return nil, err
	}

	if err := c.store.Write(ctx, base, snap); err != nil {
		return nil, fmt.Errorf("write rates for %s: %w", base, err)
	}
	metrics.RecordCollected(ns, "stored", 1)

	logging.FromContext(ctx).Info("currency rates collected",
		slog.String("base", base),
		slog.String("date", snap.Date),
		slog.Int("rates", len(snap.Rates)))
	return &snap, nil
}

// Read returns the stored snapshot for base, or nil when none exists. An empty base means RUB.
func (c *CurrencyRatesCollector) Read(ctx context.Context, base string) (*entity.CurrencyRatesSnapshot, error) {
	snap, err := c.store.Read(ctx, normalizeBase(base))
	if err != nil {
		return nil, fmt.Errorf("read rates: %w", err)
	}
	return snap, nil
}
