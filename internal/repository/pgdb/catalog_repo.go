package pgdb

import (
	"context"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// Querier — часть пула pgx, нужная для чтения каталога.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CatalogRepo читает каталог из таблицы catalog_items.
type CatalogRepo struct {
	pool Querier
}

func NewCatalogRepo(pool Querier) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// Load возвращает все строки каталога в порядке id.
func (c *CatalogRepo) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	query := `
		SELECT id, item_name, price, link, image_url, embedding
		FROM catalog_items
		ORDER BY id
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]converter.CatalogItemModel, 0)
	for rows.Next() {
		var model converter.CatalogItemModel
		if err := rows.Scan(&model.ID, &model.ItemName, &model.Price, &model.Link, &model.ImageURL, &model.Embedding); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return converter.ToArrEntity(models), nil
}
