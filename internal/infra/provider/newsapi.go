package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"place-digest/internal/domain/entity"
)

// NewsAPI fetches top headlines from a NewsAPI compatible service.
type NewsAPI struct {
	client *JSONClient
}

func NewNewsAPI(client *JSONClient) *NewsAPI {
	return &NewsAPI{client: client}
}

type headlinesPage struct {
	Status   string            `json:"status"`
	Message  string            `json:"message"`
	Articles []json.RawMessage `json:"articles"`
}

// FetchHeadlines returns the raw articles of the country's top-headlines page.
func (p *NewsAPI) FetchHeadlines(ctx context.Context, countryCode string) ([]json.RawMessage, error) {
	body, err := p.client.Get(ctx, "/top-headlines", url.Values{"country": {strings.ToLower(countryCode)}})
	if err != nil {
		return nil, err
	}

	var page headlinesPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &entity.NormalizationError{Entity: "news page", Err: err}
	}
	if page.Status == "error" {
		return nil, &entity.ProviderError{Provider: p.client.Name(), Op: "GET /top-headlines", Err: errors.New(page.Message)}
	}
	if page.Articles == nil {
		return []json.RawMessage{}, nil
	}
	return page.Articles, nil
}
