package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
)

// RecordModel — строка сериализованной таблицы каталога.
type RecordModel struct {
	ItemName  string       `json:"Item Name"`
	Price     domain.Price `json:"Price"`
	Link      string       `json:"Link"`
	ImageURL  string       `json:"Image URL"`
	Embedding []float32    `json:"Embedding"`
}

func ToEntity(model *RecordModel) domain.CatalogEntry {
	return domain.CatalogEntry{
		ItemName:  model.ItemName,
		Price:     model.Price,
		Link:      model.Link,
		ImageURL:  model.ImageURL,
		Embedding: model.Embedding,
	}
}

func ToArrEntity(models []RecordModel) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ToEntity(&models[i]))
	}

	return entries
}

// Decode читает JSON-массив записей каталога.
func Decode(r io.Reader) ([]domain.CatalogEntry, error) {
	var models []RecordModel
	if err := json.NewDecoder(r).Decode(&models); err != nil {
		return nil, fmt.Errorf("%w: %w", e.ErrCatalogInvalid, err)
	}

	return ToArrEntity(models), nil
}
