package collect

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"place-digest/internal/domain/entity"
	"place-digest/internal/infra/adapter/persistence/memory"
	"place-digest/internal/repository"
)

var (
	moscow = entity.NewLocationKey("Moscow", "RU")
	paris  = entity.NewLocationKey("Paris", "FR")
)

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "skip_cached", SkipCached.String())
	assert.Equal(t, "refetch", Refetch.String())
	assert.Equal(t, "policy(7)", Policy(7).String())
}

func TestWeatherCollector_DedupFetchesEachKeyOnce(t *testing.T) {
	provider := newFakeWeatherProvider()
	provider.responses["Moscow"] = json.RawMessage(moscowWeatherJSON)
	c := NewWeatherCollector(provider, memory.NewStore[entity.WeatherRecord](), 2)

	got, err := c.Collect(context.Background(), []entity.LocationKey{moscow, moscow, moscow}, Refetch)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, provider.callCount("Moscow"))
}

func TestWeatherCollector_FailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	provider := newFakeWeatherProvider()
	provider.responses["Moscow"] = json.RawMessage(moscowWeatherJSON)
	provider.errs["Paris"] = &entity.ProviderError{Provider: "weather-api", Op: "GET /weather", StatusCode: 404}
	store := memory.NewStore[entity.WeatherRecord]()
	c := NewWeatherCollector(provider, store, 0)

	got, err := c.Collect(ctx, []entity.LocationKey{paris, moscow}, SkipCached)
	require.NoError(t, err)
	require.Contains(t, got, moscow)
	assert.NotContains(t, got, paris)
	assert.Equal(t, "light snow", got[moscow].Description)

	rec, err := c.Read(ctx, paris)
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = c.Read(ctx, moscow)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, got[moscow], *rec)
}

func TestWeatherCollector_MalformedPayloadIsIsolated(t *testing.T) {
	provider := newFakeWeatherProvider()
	provider.responses["Moscow"] = json.RawMessage(moscowWeatherJSON)
	provider.responses["Paris"] = json.RawMessage(`{"main": {}}`)
	c := NewWeatherCollector(provider, memory.NewStore[entity.WeatherRecord](), 0)

	got, err := c.Collect(context.Background(), []entity.LocationKey{paris, moscow}, Refetch)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, moscow)
}

func TestWeatherCollector_SkipCachedVersusRefetch(t *testing.T) {
	ctx := context.Background()
	provider := newFakeWeatherProvider()
	provider.responses["Moscow"] = json.RawMessage(moscowWeatherJSON)
	store := memory.NewStore[entity.WeatherRecord]()
	cached := entity.WeatherRecord{Description: "cached"}
	require.NoError(t, store.Write(ctx, moscow.String(), cached))
	c := NewWeatherCollector(provider, store, 0)

	got, err := c.Collect(ctx, []entity.LocationKey{moscow}, SkipCached)
	require.NoError(t, err)
	assert.Equal(t, cached, got[moscow])
	assert.Equal(t, 0, provider.callCount("Moscow"))

	got, err = c.Collect(ctx, []entity.LocationKey{moscow}, Refetch)
	require.NoError(t, err)
	assert.Equal(t, "light snow", got[moscow].Description)
	assert.Equal(t, 1, provider.callCount("Moscow"))
}

func TestWeatherCollector_CancelledContextAborts(t *testing.T) {
	provider := newFakeWeatherProvider()
	provider.responses["Moscow"] = json.RawMessage(moscowWeatherJSON)
	c := NewWeatherCollector(provider, memory.NewStore[entity.WeatherRecord](), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, []entity.LocationKey{moscow}, Refetch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewsCollector_StoresWholePage(t *testing.T) {
	ctx := context.Background()
	page := raws(
		`{"title": "1"}`, `{"title": "2"}`, `{"title": "3"}`, `{"title": "4"}`, `{"title": "2"}`,
	)
	provider := &fakeNewsProvider{pages: map[string][]json.RawMessage{"RU": page}}
	c := NewNewsCollector(provider, memory.NewStore[[]entity.NewsItem](), 0)

	got, err := c.Collect(ctx, []entity.LocationKey{moscow}, SkipCached)
	require.NoError(t, err)
	assert.Equal(t, []entity.NewsItem{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}}, got[moscow])

	stored, err := c.Read(ctx, moscow)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, *stored, 4)
}

func TestNewsCollector_EmptyPageIsStored(t *testing.T) {
	ctx := context.Background()
	provider := &fakeNewsProvider{pages: map[string][]json.RawMessage{}}
	c := NewNewsCollector(provider, memory.NewStore[[]entity.NewsItem](), 0)

	got, err := c.Collect(ctx, []entity.LocationKey{paris}, SkipCached)
	require.NoError(t, err)
	require.Contains(t, got, paris)
	assert.Empty(t, got[paris])

	stored, err := c.Read(ctx, paris)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestBatchCollector_InvalidKeysAreNotFetched(t *testing.T) {
	var calls int32
	b := newBatchCollector(repository.Namespace("test"), memory.NewStore[int](), 0,
		func(ctx context.Context, key entity.LocationKey) (int, error) {
			atomic.AddInt32(&calls, 1)
			return 1, nil
		})

	keys := []entity.LocationKey{
		moscow,
		entity.NewLocationKey("", "FR"),
		entity.NewLocationKey("Atlantis", "ATL"),
		entity.NewLocationKey("Nowhere", "1Z"),
	}

	got, err := b.collect(context.Background(), keys, Refetch)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, moscow)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name      string
		key       entity.LocationKey
		wantField string
	}{
		{name: "valid", key: moscow},
		{name: "missing capital", key: entity.NewLocationKey(" ", "RU"), wantField: "capital"},
		{name: "three letter code", key: entity.NewLocationKey("Moscow", "RUS"), wantField: "country_code"},
		{name: "non alphabetic code", key: entity.NewLocationKey("Moscow", "R1"), wantField: "country_code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateKey(tt.key)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var nerr *entity.NormalizationError
			require.True(t, errors.As(err, &nerr))
			assert.Equal(t, tt.wantField, nerr.Field)
		})
	}
}

func TestBatchCollector_RespectsParallelism(t *testing.T) {
	var inFlight, peak int32
	keys := make([]entity.LocationKey, 0, 20)
	for i := 0; i < 20; i++ {
		keys = append(keys, entity.NewLocationKey(string(rune('A'+i)), "XX"))
	}

	b := newBatchCollector(repository.Namespace("test"), memory.NewStore[int](), 3,
		func(ctx context.Context, key entity.LocationKey) (int, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			defer atomic.AddInt32(&inFlight, -1)
			return len(key.Capital), nil
		})

	got, err := b.collect(context.Background(), keys, Refetch)
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}
