package serpapi

import (
	"context"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/usecase"
	"github.com/DRSN-tech/style-finder/pkg/logger"
)

// CachedSearcher кэширует результаты поиска по тексту запроса.
// Ошибки кэша не влияют на поиск: запрос уходит в next.
type CachedSearcher struct {
	next   usecase.ShoppingSearcher
	cache  usecase.SearchCacheRepository
	logger logger.Logger
}

func NewCachedSearcher(next usecase.ShoppingSearcher, cache usecase.SearchCacheRepository, logger logger.Logger) *CachedSearcher {
	return &CachedSearcher{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

func (c *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]domain.Alternative, error) {
	cached, ok, err := c.cache.Get(ctx, query)
	if err != nil {
		c.logger.Warnf("search cache read failed: %v", err)
	} else if ok {
		if limit > 0 && len(cached) > limit {
			cached = cached[:limit]
		}
		return cached, nil
	}

	found, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, query, found); err != nil {
		c.logger.Warnf("search cache write failed: %v", err)
	}

	return found, nil
}
