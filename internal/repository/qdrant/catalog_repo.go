package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/panjf2000/ants/v2"
	"github.com/qdrant/go-client/qdrant"
)

const (
	payloadRow      = "row"
	payloadItemName = "item_name"
	payloadImageURL = "image_url"
)

// PointsClient — часть клиента Qdrant, которую использует репозиторий.
type PointsClient interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
}

// Catalog — каталог в памяти, по строкам которого восстанавливаются найденные точки.
type Catalog interface {
	Entry(ctx context.Context, row int) (domain.CatalogEntry, error)
	ItemsForImage(ctx context.Context, imageURL string) ([]domain.CatalogEntry, error)
}

// CatalogRepo ищет ближайшую позицию каталога в коллекции Qdrant (косинусная метрика).
// Каждая точка хранит номер строки каталога в payload "row".
// Порядок при равных оценках Qdrant не гарантирует.
type CatalogRepo struct {
	client  PointsClient
	catalog Catalog
	cfg     *cfg.QdrantCfg
	logger  logger.Logger
}

func NewCatalogRepo(client PointsClient, catalog Catalog, cfg *cfg.QdrantCfg, logger logger.Logger) *CatalogRepo {
	return &CatalogRepo{
		client:  client,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
	}
}

// FindClosest запрашивает одну ближайшую точку и возвращает соответствующую строку каталога.
func (q *CatalogRepo) FindClosest(ctx context.Context, vector []float32) (*domain.MatchResult, error) {
	limit := uint64(1)

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayloadInclude(payloadRow),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if len(points) == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrEmptyCatalog)
	}

	rowValue, ok := points[0].GetPayload()[payloadRow]
	if !ok {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("point without %q payload: %w", payloadRow, e.ErrRowNotFound))
	}

	entry, err := q.catalog.Entry(ctx, int(rowValue.GetIntegerValue()))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return domain.NewMatchResult(entry, float64(points[0].GetScore())), nil
}

// ItemsForImage выбирается из каталога в памяти.
func (q *CatalogRepo) ItemsForImage(ctx context.Context, imageURL string) ([]domain.CatalogEntry, error) {
	return q.catalog.ItemsForImage(ctx, imageURL)
}

// Sync загружает эмбеддинги каталога в коллекцию пачками на пуле воркеров.
// Идентификатор точки равен номеру строки, поэтому повторная синхронизация идемпотентна.
// Возвращает число загруженных точек.
func (q *CatalogRepo) Sync(ctx context.Context, entries []domain.CatalogEntry) (int, error) {
	const op = "CatalogRepo.Sync"

	batches := buildBatches(entries, q.cfg.SyncBatchSize)
	if len(batches) == 0 {
		return 0, nil
	}

	workers := q.cfg.SyncWorkers
	if workers <= 0 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		synced int
	)

	for i, batch := range batches {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()

			_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
				CollectionName: q.cfg.QdrantCollectionName,
				Points:         batch,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("batch %d: %w", i, err))
				return
			}
			synced += len(batch)
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("batch %d: %w", i, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return synced, e.Wrap(op, errors.Join(errs...))
	}

	q.logger.Infof("synced %d points into collection %s", synced, q.cfg.QdrantCollectionName)

	return synced, nil
}

func buildBatches(entries []domain.CatalogEntry, size int) [][]*qdrant.PointStruct {
	if size <= 0 {
		size = 256
	}

	var (
		batches [][]*qdrant.PointStruct
		batch   []*qdrant.PointStruct
	)
	for i := range entries {
		entry := &entries[i]
		if !entry.HasEmbedding() {
			continue
		}

		batch = append(batch, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(entry.Row)),
			Vectors: qdrant.NewVectors(entry.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadRow:      int64(entry.Row),
				payloadItemName: entry.ItemName,
				payloadImageURL: entry.ImageURL,
			}),
		})

		if len(batch) == size {
			batches = append(batches, batch)
			batch = nil
		}
	}

	if len(batch) > 0 {
		batches = append(batches, batch)
	}

	return batches
}
