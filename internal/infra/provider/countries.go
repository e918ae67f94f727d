package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"place-digest/internal/domain/entity"
)

// countryFields limits the REST Countries response to what the directory keeps.
var countryFields = []string{
	"name", "capital", "alpha2Code", "altSpellings", "subregion", "population",
	"latlng", "area", "timezones", "currencies", "languages", "flag",
}

// Countries fetches the country directory from a REST Countries v2 compatible API.
type Countries struct {
	client *JSONClient
}

func NewCountries(client *JSONClient) *Countries {
	return &Countries{client: client}
}

// FetchCountries returns one raw entry per country.
func (p *Countries) FetchCountries(ctx context.Context) ([]json.RawMessage, error) {
	body, err := p.client.Get(ctx, "/all", url.Values{"fields": {strings.Join(countryFields, ",")}})
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &entity.NormalizationError{Entity: "country directory", Err: err}
	}
	return entries, nil
}
