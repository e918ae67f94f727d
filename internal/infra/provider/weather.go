package provider

import (
	"context"
	"encoding/json"
	"net/url"
)

// Weather fetches current conditions from an OpenWeather compatible API.
type Weather struct {
	client *JSONClient
}

func NewWeather(client *JSONClient) *Weather {
	return &Weather{client: client}
}

// FetchWeather returns the raw current-weather payload for capital, in metric units.
func (p *Weather) FetchWeather(ctx context.Context, capital string) (json.RawMessage, error) {
	body, err := p.client.Get(ctx, "/weather", url.Values{
		"q":     {capital},
		"units": {"metric"},
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
