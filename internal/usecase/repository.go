package usecase

import (
	"context"

	"github.com/DRSN-tech/style-finder/internal/domain"
)

// CatalogRepository — поиск ближайшей позиции и выборка вещей по изображению.
type CatalogRepository interface {
	FindClosest(ctx context.Context, vector []float32) (*domain.MatchResult, error)
	ItemsForImage(ctx context.Context, imageURL string) ([]domain.CatalogEntry, error)
}

// SearchCacheRepository хранит результаты поиска альтернатив по тексту запроса.
type SearchCacheRepository interface {
	Get(ctx context.Context, query string) ([]domain.Alternative, bool, error)
	Set(ctx context.Context, query string, alternatives []domain.Alternative) error
}
