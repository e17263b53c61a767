package memory

import (
	"context"
	"fmt"
	"math"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
)

// CatalogRepo хранит каталог в памяти и ищет ближайшую позицию полным перебором
// по косинусной близости. После создания только читается, поэтому безопасен
// для конкурентного использования без блокировок.
type CatalogRepo struct {
	entries []domain.CatalogEntry

	// Матрица эмбеддингов: только строки с непустым вектором, в исходном порядке.
	// rows[i] — номер строки каталога для i-й строки матрицы.
	matrix [][]float32
	norms  []float64
	rows   []int
	dim    int

	buildErr error
	byImage  map[string][]int
}

func NewCatalogRepo(entries []domain.CatalogEntry) *CatalogRepo {
	r := &CatalogRepo{
		entries: entries,
		byImage: make(map[string][]int),
	}

	for i := range entries {
		entry := &entries[i]
		entry.Row = i
		r.byImage[entry.ImageURL] = append(r.byImage[entry.ImageURL], i)

		if !entry.HasEmbedding() {
			continue
		}

		if r.dim == 0 {
			r.dim = len(entry.Embedding)
		} else if len(entry.Embedding) != r.dim && r.buildErr == nil {
			r.buildErr = fmt.Errorf("row %d has %d components, expected %d: %w", i, len(entry.Embedding), r.dim, e.ErrDimensionMismatch)
		}

		norm, ok := l2norm(entry.Embedding)
		if !ok && r.buildErr == nil {
			r.buildErr = fmt.Errorf("row %d: %w", i, e.ErrNumeric)
		}

		r.matrix = append(r.matrix, entry.Embedding)
		r.norms = append(r.norms, norm)
		r.rows = append(r.rows, i)
	}

	return r
}

// Len возвращает число строк каталога.
func (r *CatalogRepo) Len() int {
	return len(r.entries)
}

// Dim возвращает размерность эмбеддингов каталога (0, если эмбеддингов нет).
func (r *CatalogRepo) Dim() int {
	return r.dim
}

// Entries возвращает все строки каталога в исходном порядке.
func (r *CatalogRepo) Entries() []domain.CatalogEntry {
	return r.entries
}

// Entry возвращает строку каталога по её номеру.
func (r *CatalogRepo) Entry(_ context.Context, row int) (domain.CatalogEntry, error) {
	if row < 0 || row >= len(r.entries) {
		return domain.CatalogEntry{}, fmt.Errorf("row %d: %w", row, e.ErrRowNotFound)
	}

	return r.entries[row], nil
}

// FindClosest возвращает строку с максимальной косинусной близостью к vector.
// При равенстве побеждает строка с меньшим номером.
func (r *CatalogRepo) FindClosest(ctx context.Context, vector []float32) (*domain.MatchResult, error) {
	const op = "CatalogRepo.FindClosest"

	if len(r.entries) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyCatalog)
	}

	if len(r.matrix) == 0 {
		return nil, e.Wrap(op, e.ErrNoEmbeddings)
	}

	if r.buildErr != nil {
		return nil, e.Wrap(op, r.buildErr)
	}

	if len(vector) != r.dim {
		return nil, e.Wrap(op, fmt.Errorf("query has %d components, catalog has %d: %w", len(vector), r.dim, e.ErrDimensionMismatch))
	}

	queryNorm, ok := l2norm(vector)
	if !ok {
		return nil, e.Wrap(op, e.ErrNumeric)
	}

	best, bestScore := -1, math.Inf(-1)
	for i, row := range r.matrix {
		if i%4096 == 0 && ctx.Err() != nil {
			return nil, e.Wrap(op, ctx.Err())
		}

		score := cosine(vector, queryNorm, row, r.norms[i])
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	return domain.NewMatchResult(r.entries[r.rows[best]], bestScore), nil
}

// ItemsForImage возвращает все позиции, обнаруженные на изображении imageURL, в порядке каталога.
// Наличие эмбеддинга у строки не требуется.
func (r *CatalogRepo) ItemsForImage(_ context.Context, imageURL string) ([]domain.CatalogEntry, error) {
	idx := r.byImage[imageURL]

	items := make([]domain.CatalogEntry, 0, len(idx))
	for _, i := range idx {
		items = append(items, r.entries[i])
	}

	return items, nil
}

// cosine считает близость в float64. Вектор нулевой длины даёт 0.
func cosine(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot / (normA * normB)
}

func l2norm(v []float32) (float64, bool) {
	var sum float64
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		sum += f * f
	}

	return math.Sqrt(sum), true
}
