package provider

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"place-digest/internal/domain/entity"
	"place-digest/internal/observability/logging"
	"place-digest/internal/observability/metrics"
	"place-digest/internal/resilience/circuitbreaker"
	"place-digest/internal/resilience/retry"
)

const rssProviderName = "rss"

// RSSHeadlines fetches headlines from an RSS/Atom feed per country.
// Items are emitted in the NewsAPI article shape so one normalizer serves both sources.
type RSSHeadlines struct {
	client         *http.Client
	feedURL        string
	limiter        *RateLimiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSHeadlines creates a provider for feedURL, a template whose {country}
// placeholder is replaced with the upper-case country code.
func NewRSSHeadlines(client *http.Client, feedURL string, requestsPerSecond float64, burst int) *RSSHeadlines {
	return &RSSHeadlines{
		client:         client,
		feedURL:        feedURL,
		limiter:        NewRateLimiter(requestsPerSecond, burst),
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

type rssArticle struct {
	Source      rssSource `json:"source"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt string    `json:"publishedAt,omitempty"`
}

type rssSource struct {
	Name string `json:"name,omitempty"`
}

// FetchHeadlines parses the country's feed and returns one raw article per item.
func (p *RSSHeadlines) FetchHeadlines(ctx context.Context, countryCode string) ([]json.RawMessage, error) {
	feedURL := strings.ReplaceAll(p.feedURL, "{country}", strings.ToUpper(countryCode))

	start := time.Now()
	var feed *gofeed.Feed
	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		if err := p.limiter.Allow(ctx); err != nil {
			return err
		}
		cbResult, err := p.circuitBreaker.Execute(func() (interface{}, error) {
			return p.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				logging.FromContext(ctx).Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", rssProviderName),
					slog.String("url", feedURL),
					slog.String("state", p.circuitBreaker.State().String()))
			}
			return err
		}
		feed = cbResult.(*gofeed.Feed)
		return nil
	})
	metrics.RecordProviderRequest(rssProviderName, time.Since(start), retryErr)

	if retryErr != nil {
		pe := &entity.ProviderError{Provider: rssProviderName, Op: "GET " + feedURL, Err: retryErr}
		var httpErr *retry.HTTPError
		if errors.As(retryErr, &httpErr) {
			pe.StatusCode = httpErr.StatusCode
		}
		return nil, pe
	}

	out := make([]json.RawMessage, 0, len(feed.Items))
	for _, it := range feed.Items {
		raw, err := json.Marshal(toArticle(feed.Title, it))
		if err != nil {
			return nil, &entity.NormalizationError{Entity: "news item", Err: err}
		}
		out = append(out, raw)
	}
	return out, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (p *RSSHeadlines) doFetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "PlaceDigest/1.0"
	fp.Client = p.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &retry.HTTPError{StatusCode: httpErr.StatusCode, Message: httpErr.Status}
		}
		return nil, err
	}
	return feed, nil
}

func toArticle(feedTitle string, it *gofeed.Item) rssArticle {
	a := rssArticle{
		Source: rssSource{Name: feedTitle},
		Title:  strings.TrimSpace(it.Title),
		URL:    it.Link,
	}

	if len(it.Authors) > 0 && it.Authors[0] != nil {
		a.Author = it.Authors[0].Name
	}

	// Descriptionがなければ Content を使う
	desc := it.Description
	if desc == "" {
		desc = it.Content
	}
	a.Description = htmlToText(desc)

	if it.PublishedParsed != nil {
		a.PublishedAt = it.PublishedParsed.UTC().Format(time.RFC3339)
	} else {
		a.PublishedAt = it.Published
	}
	return a
}

// htmlToText reduces an HTML fragment to its collapsed text content.
func htmlToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
