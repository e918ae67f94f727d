// Package entity defines the core domain entities of the place digest:
// the location key shared by every data domain, the country directory record,
// currency rate snapshots, weather observations, news items and the composite
// report assembled from them, along with the domain error types.
package entity

import (
	"fmt"
	"strings"
)

// LocationKey identifies a place by its capital and ISO 3166-1 alpha-2 country code.
// It is the join key across the country, weather and news domains and is
// comparable, so it can be used directly as a map key for deduplication.
type LocationKey struct {
	Capital     string `json:"capital" validate:"required"`
	CountryCode string `json:"country_code" validate:"len=2,alpha"`
}

// NewLocationKey builds a LocationKey with a trimmed capital and an upper-cased country code.
func NewLocationKey(capital, countryCode string) LocationKey {
	return LocationKey{
		Capital:     strings.TrimSpace(capital),
		CountryCode: strings.ToUpper(strings.TrimSpace(countryCode)),
	}
}

// String returns the cache key form of the location, e.g. "Moscow,RU".
func (k LocationKey) String() string {
	return fmt.Sprintf("%s,%s", k.Capital, k.CountryCode)
}

// DedupLocations returns the distinct keys in first-seen order.
func DedupLocations(keys []LocationKey) []LocationKey {
	seen := make(map[LocationKey]struct{}, len(keys))
	out := make([]LocationKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
