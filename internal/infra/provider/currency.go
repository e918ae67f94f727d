package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"place-digest/internal/domain/entity"
)

// Currency fetches exchange rates from a Fixer compatible API.
type Currency struct {
	client *JSONClient
}

func NewCurrency(client *JSONClient) *Currency {
	return &Currency{client: client}
}

// fixerStatus is the envelope Fixer uses to report failures with a 200 status.
type fixerStatus struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// FetchRates returns the raw latest-rates payload against base.
func (p *Currency) FetchRates(ctx context.Context, base string) (json.RawMessage, error) {
	body, err := p.client.Get(ctx, "/latest", url.Values{"base": {base}})
	if err != nil {
		return nil, err
	}

	var status fixerStatus
	if err := json.Unmarshal(body, &status); err == nil && status.Success != nil && !*status.Success {
		info := "request rejected"
		if status.Error != nil {
			info = fmt.Sprintf("code %d: %s", status.Error.Code, status.Error.Info)
		}
		return nil, &entity.ProviderError{Provider: p.client.Name(), Op: "GET /latest", Err: fmt.Errorf("%s", info)}
	}
	return json.RawMessage(body), nil
}
