// Package resilience provides fault tolerance patterns for calls to external providers.
//
// The package supports:
//   - Circuit breakers per provider (countries, weather, currency, news, RSS feeds)
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.WeatherAPIConfig())
//	err := retry.WithBackoff(ctx, retry.ProviderConfig(), func() error {
//	    _, err := cb.Execute(func() (interface{}, error) {
//	        return client.Get(ctx, "/weather", query)
//	    })
//	    return err
//	})
package resilience
