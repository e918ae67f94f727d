package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"

	"place-digest/internal/observability/metrics"
)

func testConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          100 * time.Millisecond,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew(t *testing.T) {
	cb := New(testConfig("test-new"))

	if cb == nil {
		t.Fatal("expected circuit breaker, got nil")
	}
	if cb.Name() != "test-new" {
		t.Errorf("expected name='test-new', got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-new")); got != 0 {
		t.Errorf("expected state gauge=0, got %v", got)
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb := New(testConfig("test-execute"))

	result, err := cb.Execute(func() (interface{}, error) {
		return "payload", nil
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "payload" {
		t.Errorf("expected result='payload', got %v", result)
	}

	testErr := errors.New("upstream down")
	result, err = cb.Execute(func() (interface{}, error) {
		return nil, testErr
	})
	if err != testErr {
		t.Errorf("expected error=%v, got %v", testErr, err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestCircuitBreaker_TripsOpenAndRecovers(t *testing.T) {
	cb := New(testConfig("test-trip"))

	testErr := errors.New("upstream down")
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}

	if !cb.IsOpen() {
		t.Fatalf("expected open circuit, got %v", cb.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-trip")); got != float64(gobreaker.StateOpen) {
		t.Errorf("expected state gauge=%d, got %v", gobreaker.StateOpen, got)
	}

	_, err := cb.Execute(func() (interface{}, error) {
		t.Error("function should not be called when circuit is open")
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}

	// Wait for timeout to transition to half-open
	time.Sleep(150 * time.Millisecond)

	_, err = cb.Execute(func() (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Errorf("expected success in half-open state, got %v", err)
	}
	if cb.IsOpen() {
		t.Errorf("circuit should not be open after successful half-open request")
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cfg := testConfig("test-min")
	cfg.MinRequests = 10

	cb := New(cfg)

	testErr := errors.New("upstream down")
	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, testErr
		})
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected state=Closed (below MinRequests), got %v", cb.State())
	}
}

func TestProviderConfigs(t *testing.T) {
	tests := []struct {
		cfg         Config
		name        string
		minRequests uint32
		threshold   float64
	}{
		{DefaultConfig("x"), "x", 5, 0.6},
		{CountriesAPIConfig(), "countries-api", 3, 1.0},
		{WeatherAPIConfig(), "weather-api", 10, 0.6},
		{CurrencyAPIConfig(), "currency-api", 3, 1.0},
		{NewsAPIConfig(), "news-api", 10, 0.6},
		{FeedFetchConfig(), "feed-fetch", 10, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Name != tt.name {
				t.Errorf("expected Name=%q, got %q", tt.name, tt.cfg.Name)
			}
			if tt.cfg.MinRequests != tt.minRequests {
				t.Errorf("expected MinRequests=%d, got %d", tt.minRequests, tt.cfg.MinRequests)
			}
			if tt.cfg.FailureThreshold != tt.threshold {
				t.Errorf("expected FailureThreshold=%v, got %v", tt.threshold, tt.cfg.FailureThreshold)
			}
			if tt.cfg.MaxRequests == 0 {
				t.Error("MaxRequests must be positive")
			}
		})
	}
}
