package converter

import (
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
)

func ToRedisModel(query string, alternatives []domain.Alternative, cachedAt time.Time) *SearchEntryRedisModel {
	models := make([]AlternativeRedisModel, 0, len(alternatives))
	for _, alt := range alternatives {
		models = append(models, AlternativeRedisModel{
			Title:  alt.Title,
			Price:  alt.Price,
			Link:   alt.Link,
			Source: alt.Source,
		})
	}

	return &SearchEntryRedisModel{
		Query:        query,
		Alternatives: models,
		CachedAt:     cachedAt,
	}
}

func ToDomain(model *SearchEntryRedisModel) []domain.Alternative {
	alternatives := make([]domain.Alternative, 0, len(model.Alternatives))
	for _, m := range model.Alternatives {
		alternatives = append(alternatives, domain.Alternative{
			Title:  m.Title,
			Price:  m.Price,
			Link:   m.Link,
			Source: m.Source,
		})
	}

	return alternatives
}
