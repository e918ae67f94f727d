// Package report assembles composite place reports from the collectors' caches.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"place-digest/internal/domain/entity"
	"place-digest/internal/observability/logging"
	"place-digest/internal/observability/metrics"
	"place-digest/internal/observability/tracing"
	"place-digest/internal/usecase/collect"
)

// CountryDirectory reads the cached country directory.
type CountryDirectory interface {
	Read(ctx context.Context) ([]entity.CountryRecord, error)
}

// RatesSource collects and reads currency rate snapshots.
type RatesSource interface {
	Collect(ctx context.Context, base string) (*entity.CurrencyRatesSnapshot, error)
	Read(ctx context.Context, base string) (*entity.CurrencyRatesSnapshot, error)
}

// BatchCollector collects and reads per-location records.
type BatchCollector[V any] interface {
	Collect(ctx context.Context, keys []entity.LocationKey, policy collect.Policy) (map[entity.LocationKey]V, error)
	Read(ctx context.Context, key entity.LocationKey) (*V, error)
}

// Reader answers place queries. It reads the country directory without
// network access and makes sure weather, news and rates are fresh before
// merging them into a report.
type Reader struct {
	countries CountryDirectory
	rates     RatesSource
	weather   BatchCollector[entity.WeatherRecord]
	news      BatchCollector[[]entity.NewsItem]
	base      string
	now       func() time.Time
}

// Option configures a Reader.
type Option func(*Reader)

// WithBaseCurrency sets the base of the rate snapshot used in reports.
func WithBaseCurrency(base string) Option {
	return func(r *Reader) {
		if base != "" {
			r.base = base
		}
	}
}

// WithClock overrides the clock used for rate freshness.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) {
		if now != nil {
			r.now = now
		}
	}
}

func NewReader(
	countries CountryDirectory,
	rates RatesSource,
	weather BatchCollector[entity.WeatherRecord],
	news BatchCollector[[]entity.NewsItem],
	opts ...Option,
) *Reader {
	r := &Reader{
		countries: countries,
		rates:     rates,
		weather:   weather,
		news:      news,
		base:      entity.DefaultBaseCurrency,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindCountry resolves term against the cached directory. It returns nil when nothing matches.
func (r *Reader) FindCountry(ctx context.Context, term string) (*entity.CountryRecord, error) {
	directory, err := r.countries.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read country directory: %w", err)
	}
	rec, ok := bestMatch(term, directory)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Find builds the report for term, collecting whatever is missing or stale.
// It returns nil when term matches no country.
func (r *Reader) Find(ctx context.Context, term string) (*entity.CompositeReport, error) {
	return r.report(ctx, "report.find", term, collect.SkipCached)
}

// Refresh is Find with weather and news re-collected regardless of the cache.
func (r *Reader) Refresh(ctx context.Context, term string) (*entity.CompositeReport, error) {
	return r.report(ctx, "report.refresh", term, collect.Refetch)
}

func (r *Reader) GetWeather(ctx context.Context, key entity.LocationKey) (*entity.WeatherRecord, error) {
	return r.weather.Read(ctx, key)
}

func (r *Reader) GetNews(ctx context.Context, key entity.LocationKey) ([]entity.NewsItem, error) {
	page, err := r.news.Read(ctx, key)
	if err != nil || page == nil {
		return nil, err
	}
	return *page, nil
}

func (r *Reader) report(ctx context.Context, spanName, term string, policy collect.Policy) (*entity.CompositeReport, error) {
	ctx, span := tracing.GetTracer().Start(ctx, spanName,
		trace.WithAttributes(attribute.String("term", term)))
	defer span.End()

	country, err := r.FindCountry(ctx, term)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find country")
		return nil, err
	}
	if country == nil {
		span.SetAttributes(attribute.Bool("found", false))
		return nil, nil
	}

	key := country.Key()
	span.SetAttributes(
		attribute.Bool("found", true),
		attribute.String("location", key.String()),
	)

	var (
		weather *entity.WeatherRecord
		news    []entity.NewsItem
		rates   *entity.CurrencyRatesSnapshot
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		got, err := r.weather.Collect(egCtx, []entity.LocationKey{key}, policy)
		if err != nil {
			return err
		}
		if rec, ok := got[key]; ok {
			weather = &rec
		}
		return nil
	})
	eg.Go(func() error {
		got, err := r.news.Collect(egCtx, []entity.LocationKey{key}, policy)
		if err != nil {
			return err
		}
		if page, ok := got[key]; ok {
			news = page
		}
		return nil
	})
	eg.Go(func() error {
		snap, err := r.freshRates(egCtx)
		if err != nil {
			return err
		}
		rates = snap
		return nil
	})
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ensure freshness")
		return nil, err
	}

	return &entity.CompositeReport{
		Location:      *country,
		Weather:       weather,
		CurrencyRates: rates.RatesFor(country.Currencies),
		News:          news,
	}, nil
}

// freshRates returns today's snapshot, collecting it when needed. When
// collection fails and an older snapshot exists, the older one is served,
// unless ctx itself was canceled or ran past its deadline.
func (r *Reader) freshRates(ctx context.Context) (*entity.CurrencyRatesSnapshot, error) {
	snap, err := r.rates.Read(ctx, r.base)
	if err != nil {
		return nil, fmt.Errorf("read rates: %w", err)
	}
	if snap != nil && snap.IsFresh(r.now()) {
		return snap, nil
	}

	fresh, err := r.rates.Collect(ctx, r.base)
	if err == nil {
		return fresh, nil
	}
	if snap == nil || ctx.Err() != nil {
		return nil, fmt.Errorf("collect rates: %w", err)
	}

	metrics.RecordStaleRatesServed()
	logging.FromContext(ctx).Warn("serving stale currency rates",
		slog.String("base", r.base),
		slog.String("snapshot_date", snap.Date),
		slog.Any("error", err))
	return snap, nil
}
