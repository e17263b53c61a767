package usecase

import (
	"context"

	"github.com/DRSN-tech/style-finder/internal/domain"
)

type mockEncoder struct {
	EncodeFunc func(ctx context.Context, src domain.ImageSource) (*domain.EncodedImage, error)
}

func (m *mockEncoder) Encode(ctx context.Context, src domain.ImageSource) (*domain.EncodedImage, error) {
	return m.EncodeFunc(ctx, src)
}

type mockCatalog struct {
	FindClosestFunc   func(ctx context.Context, vector []float32) (*domain.MatchResult, error)
	ItemsForImageFunc func(ctx context.Context, imageURL string) ([]domain.CatalogEntry, error)
}

func (m *mockCatalog) FindClosest(ctx context.Context, vector []float32) (*domain.MatchResult, error) {
	return m.FindClosestFunc(ctx, vector)
}

func (m *mockCatalog) ItemsForImage(ctx context.Context, imageURL string) ([]domain.CatalogEntry, error) {
	return m.ItemsForImageFunc(ctx, imageURL)
}

type mockLLM struct {
	DescribeFunc func(ctx context.Context, imageBase64, prompt string) (string, error)
	prompts      []string
}

func (m *mockLLM) Describe(ctx context.Context, imageBase64, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.DescribeFunc(ctx, imageBase64, prompt)
}

type mockSearcher struct {
	SearchFunc func(ctx context.Context, query string, limit int) ([]domain.Alternative, error)
	queries    []string
}

func (m *mockSearcher) Search(ctx context.Context, query string, limit int) ([]domain.Alternative, error) {
	m.queries = append(m.queries, query)
	return m.SearchFunc(ctx, query, limit)
}

type mockPublisher struct {
	events chan *domain.AnalysisEvent
	err    error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{events: make(chan *domain.AnalysisEvent, 1)}
}

func (m *mockPublisher) PublishAnalysis(_ context.Context, event *domain.AnalysisEvent) error {
	m.events <- event
	return m.err
}
