package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/cache"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type summary struct {
	Net float64 `json:"net"`
}

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCache(client, time.Minute, zap.NewNop()), mr
}

func TestFetchJSON_CachesUntilBump(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (summary, error) {
		calls++
		return summary{Net: float64(calls) * 100}, nil
	}

	var got summary
	require.NoError(t, cache.FetchJSON(ctx, c, &got, loader, "finance", "summary"))
	assert.Equal(t, 100.0, got.Net)

	require.NoError(t, cache.FetchJSON(ctx, c, &got, loader, "finance", "summary"))
	assert.Equal(t, 100.0, got.Net)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Bump(ctx))
	require.NoError(t, cache.FetchJSON(ctx, c, &got, loader, "finance", "summary"))
	assert.Equal(t, 200.0, got.Net)
	assert.Equal(t, 2, calls)
}

func TestBuildKey_IncludesVersion(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:v1", key)

	c.Invalidate(ctx)
	key, err = c.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "dashboard:v2", key)
}

func TestNilCache_AlwaysLoads(t *testing.T) {
	var c *cache.Cache
	ctx := context.Background()
	calls := 0

	var got summary
	for i := 0; i < 2; i++ {
		require.NoError(t, cache.FetchJSON(ctx, c, &got, func(context.Context) (summary, error) {
			calls++
			return summary{Net: 1}, nil
		}, "k"))
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Bump(ctx))
	assert.NoError(t, c.Ping(ctx))
	c.Invalidate(ctx)
}

func TestFetchJSON_LoaderErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var got summary
	err := cache.FetchJSON(ctx, c, &got, func(context.Context) (summary, error) {
		return summary{}, boom
	}, "k")
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k:v1"))
}

func TestFetchJSON_RedisDownFallsBackToLoader(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var got summary
	err := cache.FetchJSON(context.Background(), c, &got, func(context.Context) (summary, error) {
		return summary{Net: 7}, nil
	}, "k")
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Net)
}
