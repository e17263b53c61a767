package catalog

import (
	"fmt"
	"math"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
)

// Validate проверяет загруженный каталог: он не пуст, хотя бы одна строка имеет эмбеддинг,
// все эмбеддинги одной длины и конечны. Возвращает размерность эмбеддингов.
func Validate(entries []domain.CatalogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: %w", e.ErrCatalogInvalid, e.ErrEmptyCatalog)
	}

	dim := 0
	for i := range entries {
		emb := entries[i].Embedding
		if len(emb) == 0 {
			continue
		}

		if dim == 0 {
			dim = len(emb)
		} else if len(emb) != dim {
			return 0, fmt.Errorf("%w: row %d has %d components, expected %d: %w",
				e.ErrCatalogInvalid, i, len(emb), dim, e.ErrDimensionMismatch)
		}

		for _, v := range emb {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return 0, fmt.Errorf("%w: row %d: %w", e.ErrCatalogInvalid, i, e.ErrNumeric)
			}
		}
	}

	if dim == 0 {
		return 0, fmt.Errorf("%w: %w", e.ErrCatalogInvalid, e.ErrNoEmbeddings)
	}

	return dim, nil
}
