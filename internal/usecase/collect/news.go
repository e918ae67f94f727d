package collect

import (
	"context"
	"fmt"

	"place-digest/internal/domain/entity"
	"place-digest/internal/repository"
)

// NewsCollector keeps the latest headline page per location.
// The whole page is stored; trimming to the top items happens at render time.
type NewsCollector struct {
	batch batchCollector[[]entity.NewsItem]
}

func NewNewsCollector(provider NewsProvider, store repository.NewsStore, parallelism int) *NewsCollector {
	fetch := func(ctx context.Context, key entity.LocationKey) ([]entity.NewsItem, error) {
		raws, err := provider.FetchHeadlines(ctx, key.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("fetch headlines: %w", err)
		}
		return normalizePage(raws)
	}
	return &NewsCollector{
		batch: newBatchCollector(repository.NamespaceNews, store, parallelism, fetch),
	}
}

func (c *NewsCollector) Collect(ctx context.Context, keys []entity.LocationKey, policy Policy) (map[entity.LocationKey][]entity.NewsItem, error) {
	return c.batch.collect(ctx, keys, policy)
}

func (c *NewsCollector) Read(ctx context.Context, key entity.LocationKey) (*[]entity.NewsItem, error) {
	return c.batch.read(ctx, key)
}
