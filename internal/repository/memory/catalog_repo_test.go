package memory

import (
	"context"
	"math"
	"testing"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name, image string, emb ...float32) domain.CatalogEntry {
	return domain.CatalogEntry{
		ItemName:  name,
		Price:     domain.NewPrice("10"),
		Link:      "https://shop.example/" + name,
		ImageURL:  image,
		Embedding: emb,
	}
}

func TestFindClosest_SelfMatch(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{
		entry("Blazer", "img1", 1, 0, 0),
		entry("Shoes", "img1", 0, 1, 0),
		entry("Bag", "img2", 0, 0, 1),
	})

	res, err := repo.FindClosest(context.Background(), []float32{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "Shoes", res.Entry.ItemName)
	assert.Equal(t, 1, res.Entry.Row)
	assert.InDelta(t, 1.0, res.Score, 1e-6)
}

func TestFindClosest_RowMappingSkipsMissingEmbeddings(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{
		entry("A", "img1", 1, 0),
		entry("B", "img1"),
		entry("C", "img2", 0, 1),
	})

	res, err := repo.FindClosest(context.Background(), []float32{0, 2})
	require.NoError(t, err)
	assert.Equal(t, "C", res.Entry.ItemName)
	assert.Equal(t, 2, res.Entry.Row)
}

func TestFindClosest_TieBreaksOnFirstRow(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{
		entry("first", "img1", 1, 1),
		entry("second", "img2", 2, 2),
	})

	res, err := repo.FindClosest(context.Background(), []float32{3, 3})
	require.NoError(t, err)
	assert.Equal(t, "first", res.Entry.ItemName)
}

func TestFindClosest_ZeroQueryScoresZero(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{
		entry("A", "img1", 1, 0),
		entry("B", "img2", 0, 1),
	})

	res, err := repo.FindClosest(context.Background(), []float32{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "A", res.Entry.ItemName)
	assert.Zero(t, res.Score)
}

func TestFindClosest_ScoreRange(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{
		entry("A", "img1", 1, 0),
	})

	res, err := repo.FindClosest(context.Background(), []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, res.Score, 1e-9)
}

func TestFindClosest_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		entries []domain.CatalogEntry
		query   []float32
		wantErr error
	}{
		{
			name:    "empty catalog",
			entries: nil,
			query:   []float32{1},
			wantErr: e.ErrEmptyCatalog,
		},
		{
			name:    "no embeddings",
			entries: []domain.CatalogEntry{entry("A", "img1"), entry("B", "img2")},
			query:   []float32{1},
			wantErr: e.ErrNoEmbeddings,
		},
		{
			name:    "query dimension mismatch",
			entries: []domain.CatalogEntry{entry("A", "img1", 1, 0, 0)},
			query:   []float32{1, 0},
			wantErr: e.ErrDimensionMismatch,
		},
		{
			name:    "catalog dimension mismatch",
			entries: []domain.CatalogEntry{entry("A", "img1", 1, 0), entry("B", "img2", 1, 0, 0)},
			query:   []float32{1, 0},
			wantErr: e.ErrDimensionMismatch,
		},
		{
			name:    "nan in query",
			entries: []domain.CatalogEntry{entry("A", "img1", 1, 0)},
			query:   []float32{float32(math.NaN()), 0},
			wantErr: e.ErrNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewCatalogRepo(tt.entries)
			_, err := repo.FindClosest(ctx, tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestItemsForImage(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{
		entry("Blazer", "img1", 1, 0),
		entry("Bag", "img2", 0, 1),
		entry("Shoes", "img1"),
	})
	ctx := context.Background()

	items, err := repo.ItemsForImage(ctx, "img1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Blazer", items[0].ItemName)
	assert.Equal(t, "Shoes", items[1].ItemName)

	items, err = repo.ItemsForImage(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEntry(t *testing.T) {
	repo := NewCatalogRepo([]domain.CatalogEntry{entry("A", "img1", 1)})

	got, err := repo.Entry(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "A", got.ItemName)

	_, err = repo.Entry(context.Background(), 5)
	assert.ErrorIs(t, err, e.ErrRowNotFound)
}
