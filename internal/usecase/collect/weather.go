package collect

import (
	"context"
	"fmt"

	"place-digest/internal/domain/entity"
	"place-digest/internal/repository"
)

// WeatherCollector keeps the latest observation per location.
type WeatherCollector struct {
	batch batchCollector[entity.WeatherRecord]
}

func NewWeatherCollector(provider WeatherProvider, store repository.WeatherStore, parallelism int) *WeatherCollector {
	fetch := func(ctx context.Context, key entity.LocationKey) (entity.WeatherRecord, error) {
		raw, err := provider.FetchWeather(ctx, key.Capital)
		if err != nil {
			return entity.WeatherRecord{}, fmt.Errorf("fetch weather: %w", err)
		}
		return normalizeWeather(raw)
	}
	return &WeatherCollector{
		batch: newBatchCollector(repository.NamespaceWeather, store, parallelism, fetch),
	}
}

// Collect gathers weather for every distinct key. Locations that fail are absent from the result.
func (c *WeatherCollector) Collect(ctx context.Context, keys []entity.LocationKey, policy Policy) (map[entity.LocationKey]entity.WeatherRecord, error) {
	return c.batch.collect(ctx, keys, policy)
}

func (c *WeatherCollector) Read(ctx context.Context, key entity.LocationKey) (*entity.WeatherRecord, error) {
	return c.batch.read(ctx, key)
}
