package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/repository/redis/converter"
	"github.com/DRSN-tech/style-finder/pkg/clients"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const searchKeyPrefix = "search:"

// CacheRepo кэширует выдачу поиска альтернатив в Redis.
type CacheRepo struct {
	client *clients.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, ttl time.Duration, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get возвращает закэшированную выдачу. Промах — (nil, false, nil).
func (c *CacheRepo) Get(ctx context.Context, query string) ([]domain.Alternative, bool, error) {
	key := searchKey(query)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, false, nil // cache miss
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.SearchEntryRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.evict(ctx, key)
		return nil, false, nil
	}

	if model.Query != query {
		c.logger.Warnf("Cache query mismatch for key %s", key)
		c.evict(ctx, key)
		return nil, false, nil
	}

	return converter.ToDomain(&model), true, nil
}

// Set сохраняет выдачу с TTL.
func (c *CacheRepo) Set(ctx context.Context, query string, alternatives []domain.Alternative) error {
	data, err := json.Marshal(converter.ToRedisModel(query, alternatives, time.Now().UTC()))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, searchKey(query), data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) evict(ctx context.Context, key string) {
	if err := c.client.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// searchKey возвращает Redis-ключ для текста запроса
func searchKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}
