package converter

import "github.com/DRSN-tech/style-finder/internal/domain"

func ToEntity(model *CatalogItemModel) domain.CatalogEntry {
	var price domain.Price
	if model.Price != nil {
		price = domain.NewPrice(*model.Price)
	}

	return domain.CatalogEntry{
		ItemName:  model.ItemName,
		Price:     price,
		Link:      model.Link,
		ImageURL:  model.ImageURL,
		Embedding: model.Embedding,
	}
}

func ToArrEntity(models []CatalogItemModel) []domain.CatalogEntry {
	entries := make([]domain.CatalogEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ToEntity(&models[i]))
	}

	return entries
}
