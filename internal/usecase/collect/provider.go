// Package collect implements the per-domain collectors of the place digest.
// Each collector fetches raw payloads from its provider, normalizes them into
// entities and persists them through its CacheStore. The country directory is
// collected as a whole and all-or-nothing; weather and news are collected per
// location in parallel batches where one failing location never aborts the rest.
package collect

import (
	"context"
	"encoding/json"
)

// CountryProvider fetches the full country directory in one call.
type CountryProvider interface {
	FetchCountries(ctx context.Context) ([]json.RawMessage, error)
}

// WeatherProvider fetches the current weather at a capital.
type WeatherProvider interface {
	FetchWeather(ctx context.Context, capital string) (json.RawMessage, error)
}

// CurrencyProvider fetches the latest exchange rates against base.
type CurrencyProvider interface {
	FetchRates(ctx context.Context, base string) (json.RawMessage, error)
}

// NewsProvider fetches the top headlines of a country.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, countryCode string) ([]json.RawMessage, error)
}
