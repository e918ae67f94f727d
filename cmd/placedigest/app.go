package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"place-digest/internal/config"
	"place-digest/internal/domain/entity"
	fileStore "place-digest/internal/infra/adapter/persistence/file"
	memStore "place-digest/internal/infra/adapter/persistence/memory"
	pgStore "place-digest/internal/infra/adapter/persistence/postgres"
	"place-digest/internal/infra/db"
	"place-digest/internal/infra/provider"
	"place-digest/internal/render"
	"place-digest/internal/repository"
	"place-digest/internal/resilience/circuitbreaker"
	"place-digest/internal/resilience/retry"
	"place-digest/internal/usecase/collect"
	"place-digest/internal/usecase/report"
)

// app holds the wired collectors, reader and renderer of one invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	stores   *stores
	country  *collect.CountryCollector
	rates    *collect.CurrencyRatesCollector
	weather  *collect.WeatherCollector
	news     *collect.NewsCollector
	reader   *report.Reader
	renderer *render.Renderer
}

type stores struct {
	countries repository.CountryStore
	rates     repository.RatesStore
	weather   repository.WeatherStore
	news      repository.NewsStore
	close     func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("cache store opened", slog.String("backend", cfg.Store.Backend))

	httpClient := createHTTPClient(cfg.Collect.HTTPTimeout)
	p := cfg.Providers

	countriesClient := provider.NewJSONClient(httpClient, provider.ClientConfig{
		Name:          "countries-api",
		BaseURL:       p.Countries.BaseURL,
		APIKey:        p.Countries.APIKey,
		KeyQuery:      "access_key",
		RatePerSecond: p.Countries.RatePerSecond,
		Burst:         p.Countries.Burst,
		Breaker:       circuitbreaker.CountriesAPIConfig(),
		Retry:         retry.ProviderConfig(),
	})
	weatherClient := provider.NewJSONClient(httpClient, provider.ClientConfig{
		Name:          "weather-api",
		BaseURL:       p.Weather.BaseURL,
		APIKey:        p.Weather.APIKey,
		KeyQuery:      "appid",
		RatePerSecond: p.Weather.RatePerSecond,
		Burst:         p.Weather.Burst,
		Breaker:       circuitbreaker.WeatherAPIConfig(),
		Retry:         retry.ProviderConfig(),
	})
	currencyClient := provider.NewJSONClient(httpClient, provider.ClientConfig{
		Name:          "currency-api",
		BaseURL:       p.Currency.BaseURL,
		APIKey:        p.Currency.APIKey,
		KeyHeader:     "apikey",
		RatePerSecond: p.Currency.RatePerSecond,
		Burst:         p.Currency.Burst,
		Breaker:       circuitbreaker.CurrencyAPIConfig(),
		Retry:         retry.ProviderConfig(),
	})

	var headlines collect.NewsProvider
	switch cfg.Collect.NewsSource {
	case config.NewsSourceRSS:
		headlines = provider.NewRSSHeadlines(httpClient, p.RSS.FeedURL, p.RSS.RatePerSecond, p.RSS.Burst)
	default:
		headlines = provider.NewNewsAPI(provider.NewJSONClient(httpClient, provider.ClientConfig{
			Name:          "news-api",
			BaseURL:       p.News.BaseURL,
			APIKey:        p.News.APIKey,
			KeyQuery:      "apiKey",
			RatePerSecond: p.News.RatePerSecond,
			Burst:         p.News.Burst,
			Breaker:       circuitbreaker.NewsAPIConfig(),
			Retry:         retry.ProviderConfig(),
		}))
	}
	logger.Info("providers initialized", slog.String("news_source", cfg.Collect.NewsSource))

	a := &app{
		cfg:      cfg,
		logger:   logger,
		stores:   st,
		country:  collect.NewCountryCollector(provider.NewCountries(countriesClient), st.countries),
		rates:    collect.NewCurrencyRatesCollector(provider.NewCurrency(currencyClient), st.rates, nil),
		weather:  collect.NewWeatherCollector(provider.NewWeather(weatherClient), st.weather, cfg.Collect.Parallelism),
		news:     collect.NewNewsCollector(headlines, st.news, cfg.Collect.Parallelism),
		renderer: render.New(render.LabelsFor(cfg.Render.Language)),
	}
	a.reader = report.NewReader(a.country, a.rates, a.weather, a.news,
		report.WithBaseCurrency(cfg.Collect.BaseCurrency))
	return a, nil
}

// Close releases the cache store.
func (a *app) Close() {
	if a.stores.close == nil {
		return
	}
	if err := a.stores.close(); err != nil {
		a.logger.Error("failed to close cache store", slog.Any("error", err))
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return &stores{
			countries: memStore.NewStore[entity.CountryRecord](),
			rates:     memStore.NewStore[entity.CurrencyRatesSnapshot](),
			weather:   memStore.NewStore[entity.WeatherRecord](),
			news:      memStore.NewStore[[]entity.NewsItem](),
		}, nil

	case config.BackendPostgres:
		database, err := db.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.MigrateUp(database.DB); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		return &stores{
			countries: pgStore.NewStore[entity.CountryRecord](database, repository.NamespaceCountries),
			rates:     pgStore.NewStore[entity.CurrencyRatesSnapshot](database, repository.NamespaceCurrencyRates),
			weather:   pgStore.NewStore[entity.WeatherRecord](database, repository.NamespaceWeather),
			news:      pgStore.NewStore[[]entity.NewsItem](database, repository.NamespaceNews),
			close:     database.Close,
		}, nil

	default:
		dir := cfg.Store.Dir
		countries, err := fileStore.NewStore[entity.CountryRecord](dir, repository.NamespaceCountries)
		if err != nil {
			return nil, err
		}
		rates, err := fileStore.NewStore[entity.CurrencyRatesSnapshot](dir, repository.NamespaceCurrencyRates)
		if err != nil {
			return nil, err
		}
		weather, err := fileStore.NewStore[entity.WeatherRecord](dir, repository.NamespaceWeather)
		if err != nil {
			return nil, err
		}
		news, err := fileStore.NewStore[[]entity.NewsItem](dir, repository.NamespaceNews)
		if err != nil {
			return nil, err
		}
		return &stores{countries: countries, rates: rates, weather: weather, news: news}, nil
	}
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// CollectSummary reports what one collect run stored.
type CollectSummary struct {
	Countries int
	RatesDate string
	Weather   int
	News      int
}

// Collect re-collects the country directory and today's rates. With places it
// also refetches weather and news for every capital of the directory.
func (a *app) Collect(ctx context.Context, places bool) (*CollectSummary, error) {
	directory, err := a.country.Collect(ctx)
	if err != nil {
		return nil, err
	}
	summary := &CollectSummary{Countries: len(directory)}

	snap, err := a.rates.Collect(ctx, a.cfg.Collect.BaseCurrency)
	if err != nil {
		return nil, err
	}
	summary.RatesDate = snap.Date

	if !places {
		return summary, nil
	}

	keys := make([]entity.LocationKey, 0, len(directory))
	for _, c := range directory {
		keys = append(keys, c.Key())
	}
	weather, err := a.weather.Collect(ctx, keys, collect.Refetch)
	if err != nil {
		return nil, err
	}
	news, err := a.news.Collect(ctx, keys, collect.Refetch)
	if err != nil {
		return nil, err
	}
	summary.Weather, summary.News = len(weather), len(news)
	return summary, nil
}

// Report renders the report for term. An empty directory is collected first.
func (a *app) Report(ctx context.Context, term string, refresh bool) ([]string, error) {
	directory, err := a.country.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(directory) == 0 {
		a.logger.Info("country directory is empty, collecting it first")
		if _, err := a.country.Collect(ctx); err != nil {
			return nil, err
		}
	}

	find := a.reader.Find
	if refresh {
		find = a.reader.Refresh
	}
	rep, err := find(ctx, term)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("%w: %q", errNotFound, term)
	}
	return a.renderer.Render(rep), nil
}
