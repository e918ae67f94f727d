package repository

import (
	"context"

	"place-digest/internal/domain/entity"
)

// Namespace separates the records of one data domain inside a backend.
type Namespace string

const (
	NamespaceCountries     Namespace = "countries"
	NamespaceCurrencyRates Namespace = "currency_rates"
	NamespaceWeather       Namespace = "weather"
	NamespaceNews          Namespace = "news"
)

// CacheStore persists previously fetched, validated records of one namespace.
//
// Read returns nil, nil when the key has never been written.
// Write and WriteBatch replace whole records; there is no partial merge.
// WriteBatch is all-or-nothing. ReplaceAll swaps the whole namespace for
// records, dropping keys that are not in it. ReadAll returns records ordered by key.
type CacheStore[V any] interface {
	Read(ctx context.Context, key string) (*V, error)
	Write(ctx context.Context, key string, record V) error
	WriteBatch(ctx context.Context, records map[string]V) error
	ReplaceAll(ctx context.Context, records map[string]V) error
	ReadAll(ctx context.Context) ([]V, error)
}

type (
	CountryStore = CacheStore[entity.CountryRecord]
	RatesStore   = CacheStore[entity.CurrencyRatesSnapshot]
	WeatherStore = CacheStore[entity.WeatherRecord]
	NewsStore    = CacheStore[[]entity.NewsItem]
)
