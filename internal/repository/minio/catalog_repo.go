package minio

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/repository/catalog"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ObjectGetter — часть клиента MinIO, нужная для чтения каталога.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// CatalogRepo читает сериализованный каталог из объекта MinIO.
type CatalogRepo struct {
	mc     ObjectGetter
	cfg    *cfg.MinIOCfg
	object string
}

func NewCatalogRepo(mc ObjectGetter, cfg *cfg.MinIOCfg, object string) *CatalogRepo {
	return &CatalogRepo{
		mc:     mc,
		cfg:    cfg,
		object: object,
	}
}

// Load скачивает объект каталога и декодирует его.
func (c *CatalogRepo) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	obj, err := c.mc.GetObject(ctx, c.cfg.BucketName, c.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer obj.Close()

	if _, err := obj.Stat(); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%s/%s: %w", c.cfg.BucketName, c.object, e.ErrCatalogNotFound))
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	entries, err := catalog.Decode(obj)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return entries, nil
}
