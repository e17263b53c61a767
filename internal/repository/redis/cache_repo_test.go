package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/clients"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, ttl time.Duration) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := clients.NewRedisClient(&cfg.RedisCfg{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheRepo(client, ttl, logger.NewNop()), mr
}

func TestCacheRepo_SetGet(t *testing.T) {
	repo, _ := newTestRepo(t, time.Hour)
	ctx := context.Background()

	_, ok, err := repo.Get(ctx, "jacket")
	require.NoError(t, err)
	assert.False(t, ok)

	alts := []domain.Alternative{{Title: "Navy Blazer", Price: "$49.99", Link: "https://shop/navy", Source: "Store"}}
	require.NoError(t, repo.Set(ctx, "jacket", alts))

	got, ok, err := repo.Get(ctx, "jacket")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, alts, got)
}

func TestCacheRepo_EmptyResultIsCached(t *testing.T) {
	repo, _ := newTestRepo(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "nothing", nil))

	got, ok, err := repo.Get(ctx, "nothing")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCacheRepo_Expires(t *testing.T) {
	repo, mr := newTestRepo(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "jacket", []domain.Alternative{{Title: "x"}}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := repo.Get(ctx, "jacket")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepo_CorruptedEntryIsEvicted(t *testing.T) {
	repo, mr := newTestRepo(t, time.Hour)
	key := searchKey("jacket")
	require.NoError(t, mr.Set(key, "{not json"))

	_, ok, err := repo.Get(context.Background(), "jacket")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(key))
}

func TestCacheRepo_Unavailable(t *testing.T) {
	repo, mr := newTestRepo(t, time.Hour)
	mr.Close()

	_, _, err := repo.Get(context.Background(), "jacket")
	assert.Error(t, err)
}
