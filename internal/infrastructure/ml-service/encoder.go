package ml_service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/infrastructure/imaging"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Backbone — замороженная модель, превращающая тензор изображения в вектор признаков.
type Backbone interface {
	Infer(ctx context.Context, tensor domain.Tensor) ([]float32, error)
}

// ImageEncoder извлекает эмбеддинг изображения запроса. Векторы одинаковых
// изображений берутся из LRU-кэша по SHA-256 байтов.
type ImageEncoder struct {
	processor *imaging.Processor
	backbone  Backbone
	cache     *lru.Cache[string, []float32] // nil, если кэш выключен
	logger    logger.Logger
}

func NewImageEncoder(processor *imaging.Processor, backbone Backbone, cacheSize int, logger logger.Logger) (*ImageEncoder, error) {
	const op = "NewImageEncoder"

	enc := &ImageEncoder{
		processor: processor,
		backbone:  backbone,
		logger:    logger,
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, []float32](cacheSize)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		enc.cache = cache
	}

	return enc, nil
}

// Encode возвращает base64 JPEG-копию и вектор. При любой ошибке результата нет.
func (i *ImageEncoder) Encode(ctx context.Context, src domain.ImageSource) (*domain.EncodedImage, error) {
	const op = "ImageEncoder.Encode"

	data, err := i.processor.Read(ctx, src)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	img, err := i.processor.Decode(data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	encoded, err := i.processor.EncodeBase64(img)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	key := digest(data)
	if vector, ok := i.cacheGet(key); ok {
		i.logger.Debugf("embedding cache hit: %s", key)
		return domain.NewEncodedImage(encoded, vector), nil
	}

	vector, err := i.backbone.Infer(ctx, i.processor.Tensor(img))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if i.cache != nil {
		i.cache.Add(key, vector)
	}

	return domain.NewEncodedImage(encoded, vector), nil
}

func (i *ImageEncoder) cacheGet(key string) ([]float32, bool) {
	if i.cache == nil {
		return nil, false
	}

	return i.cache.Get(key)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
