// Package provider implements the external data providers: the country
// directory, current weather, exchange rates and headlines. JSON APIs share
// one JSONClient that applies authentication, rate limiting, a circuit breaker
// and retry with backoff. Providers return raw payloads; mapping them into
// entities belongs to the collectors.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"place-digest/internal/domain/entity"
	"place-digest/internal/observability/logging"
	"place-digest/internal/observability/metrics"
	"place-digest/internal/observability/tracing"
	"place-digest/internal/resilience/circuitbreaker"
	"place-digest/internal/resilience/retry"
)

// maxBodySize caps provider responses; the full country directory is well below it.
const maxBodySize = 16 << 20

// ClientConfig configures a JSONClient.
// When KeyHeader is set the API key travels in that header, otherwise in the
// KeyQuery parameter. An empty APIKey sends no credentials.
type ClientConfig struct {
	Name          string
	BaseURL       string
	APIKey        string
	KeyHeader     string
	KeyQuery      string
	RatePerSecond float64
	Burst         int
	Breaker       circuitbreaker.Config
	Retry         retry.Config
}

// JSONClient performs GET requests against one JSON API.
type JSONClient struct {
	name       string
	baseURL    string
	apiKey     string
	keyHeader  string
	keyQuery   string
	httpClient *http.Client
	limiter    *RateLimiter
	breaker    *circuitbreaker.CircuitBreaker
	retry      retry.Config
}

// NewJSONClient creates a client that is safe for concurrent use.
func NewJSONClient(httpClient *http.Client, cfg ClientConfig) *JSONClient {
	return &JSONClient{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		keyHeader:  cfg.KeyHeader,
		keyQuery:   cfg.KeyQuery,
		httpClient: httpClient,
		limiter:    NewRateLimiter(cfg.RatePerSecond, cfg.Burst),
		breaker:    circuitbreaker.New(cfg.Breaker),
		retry:      cfg.Retry,
	}
}

// Name returns the provider name used in errors and metrics.
func (c *JSONClient) Name() string { return c.name }

type response struct {
	status int
	body   []byte
}

// Get fetches path with the given query and returns the response body.
// Any failure is reported as *entity.ProviderError.
func (c *JSONClient) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "provider.get",
		trace.WithAttributes(
			attribute.String("provider", c.name),
			attribute.String("path", path),
		))
	defer span.End()

	start := time.Now()
	body, err := c.get(ctx, path, query)
	metrics.RecordProviderRequest(c.name, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return body, nil
}

func (c *JSONClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var body []byte

	retryErr := retry.WithBackoff(ctx, c.retry, func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			if err := c.limiter.Allow(ctx); err != nil {
				return nil, err
			}
			resp, err := c.do(ctx, path, query)
			if err != nil {
				return nil, err
			}
			// Only server-side trouble counts against the circuit.
			if resp.status >= 500 || resp.status == http.StatusTooManyRequests {
				return nil, &retry.HTTPError{StatusCode: resp.status, Message: snippet(resp.body)}
			}
			return resp, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				logging.FromContext(ctx).Warn("provider circuit breaker open, request rejected",
					slog.String("service", c.name),
					slog.String("state", c.breaker.State().String()))
			}
			return err
		}

		resp := result.(*response)
		if resp.status < 200 || resp.status >= 300 {
			return &retry.HTTPError{StatusCode: resp.status, Message: snippet(resp.body)}
		}
		body = resp.body
		return nil
	})

	if retryErr != nil {
		pe := &entity.ProviderError{Provider: c.name, Op: "GET " + path, Err: retryErr}
		var httpErr *retry.HTTPError
		if errors.As(retryErr, &httpErr) {
			pe.StatusCode = httpErr.StatusCode
		}
		return nil, pe
	}
	return body, nil
}

func (c *JSONClient) do(ctx context.Context, path string, query url.Values) (*response, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.apiKey != "" && c.keyHeader == "" && c.keyQuery != "" {
		q.Set(c.keyQuery, c.apiKey)
	}

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", c.redact(err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PlaceDigest/1.0")
	if c.apiKey != "" && c.keyHeader != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", c.redact(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &response{status: resp.StatusCode, body: body}, nil
}

// redact strips the API key from URLs embedded in transport errors.
func (c *JSONClient) redact(err error) error {
	if c.apiKey == "" {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(c.apiKey), "REDACTED")
	}
	return err
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
