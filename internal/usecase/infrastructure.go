package usecase

import (
	"context"

	"github.com/DRSN-tech/style-finder/internal/domain"
)

// ImageEncoder превращает изображение в base64 JPEG-копию и вектор признаков.
type ImageEncoder interface {
	Encode(ctx context.Context, src domain.ImageSource) (*domain.EncodedImage, error)
}

// VisionLLM — мультимодальная модель: один ход пользователя с текстом и изображением.
type VisionLLM interface {
	Describe(ctx context.Context, imageBase64, prompt string) (string, error)
}

// ShoppingSearcher ищет товары по свободному текстовому запросу.
type ShoppingSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Alternative, error)
}

type EventPublisher interface {
	PublishAnalysis(ctx context.Context, event *domain.AnalysisEvent) error
}
