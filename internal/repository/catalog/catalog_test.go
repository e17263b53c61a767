package catalog

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
  {"Item Name": "Wool Blazer", "Price": 120.5, "Link": "https://shop/blazer", "Image URL": "https://img/1.jpg", "Embedding": [0.1, 0.2, 0.3]},
  {"Item Name": "Boots", "Price": "N/A", "Link": "https://shop/boots", "Image URL": "https://img/1.jpg", "Embedding": null},
  {"Item Name": "Bag", "Price": "$35", "Link": "https://shop/bag", "Image URL": "https://img/2.jpg", "Embedding": [0.4, 0.5, 0.6]}
]`

func TestDecode(t *testing.T) {
	entries, err := Decode(strings.NewReader(catalogJSON))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Wool Blazer", entries[0].ItemName)
	assert.Equal(t, "120.5", entries[0].Price.String())
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, entries[0].Embedding)

	assert.Equal(t, "N/A", entries[1].Price.String())
	assert.False(t, entries[1].HasEmbedding())

	assert.True(t, entries[2].Price.Numeric)
	assert.Equal(t, "35", entries[2].Price.String())
}

func TestDecode_KeepsPriceAsWritten(t *testing.T) {
	const data = `[
  {"Item Name": "Shirt", "Price": "19.90", "Link": "l", "Image URL": "img", "Embedding": [1]},
  {"Item Name": "Bag", "Price": "1e2", "Link": "l", "Image URL": "img", "Embedding": [1]},
  {"Item Name": "Hat", "Price": " 0.50 ", "Link": "l", "Image URL": "img", "Embedding": [1]},
  {"Item Name": "Belt", "Price": 12.50, "Link": "l", "Image URL": "img", "Embedding": [1]}
]`

	entries, err := Decode(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 4)

	want := []string{"19.90", "1e2", "0.50", "12.50"}
	for i, entry := range entries {
		assert.Equal(t, want[i], entry.Price.String(), entry.ItemName)
		assert.True(t, entry.Price.Numeric, entry.ItemName)
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"Item Name": 1}`))
	assert.ErrorIs(t, err, e.ErrCatalogInvalid)
}

func TestValidate(t *testing.T) {
	entries, err := Decode(strings.NewReader(catalogJSON))
	require.NoError(t, err)

	dim, err := Validate(entries)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.CatalogEntry
		wantErr error
	}{
		{name: "empty", entries: nil, wantErr: e.ErrEmptyCatalog},
		{name: "no embeddings", entries: []domain.CatalogEntry{{ItemName: "A"}}, wantErr: e.ErrNoEmbeddings},
		{
			name:    "dimension mismatch",
			entries: []domain.CatalogEntry{{Embedding: []float32{1, 2}}, {Embedding: []float32{1}}},
			wantErr: e.ErrDimensionMismatch,
		},
		{
			name:    "non finite",
			entries: []domain.CatalogEntry{{Embedding: []float32{float32(math.Inf(1))}}},
			wantErr: e.ErrNumeric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.entries)
			assert.ErrorIs(t, err, e.ErrCatalogInvalid)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileRepo_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0o600))

	entries, err := NewFileRepo(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	_, err = NewFileRepo(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, e.ErrCatalogNotFound)
}
