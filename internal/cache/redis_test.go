package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCacheWithClient(client, DefaultConfig())
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	config := DefaultRedisConfig()
	config.Addr = mr.Addr()

	cache, err := NewRedisCache(context.Background(), config)
	require.NoError(t, err)
	defer cache.Close()
}

func TestNewRedisCache_ConnectionError(t *testing.T) {
	config := DefaultRedisConfig()
	config.Addr = "localhost:99999"

	_, err := NewRedisCache(context.Background(), config)
	assert.Error(t, err)
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "collection-blog", []byte("blog"), time.Minute))

	value, err := cache.Get(ctx, "collection-blog")
	require.NoError(t, err)
	assert.Equal(t, []byte("blog"), value)

	assert.True(t, mr.Exists("folio:collection-blog"))
	assert.Equal(t, time.Minute, mr.TTL("folio:collection-blog"))
}

func TestRedisCache_DefaultTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "default", []byte("v"), 0))
	assert.Equal(t, 5*time.Minute, mr.TTL("folio:default"))

	require.NoError(t, cache.Set(ctx, "forever", []byte("v"), -1))
	assert.Equal(t, time.Duration(0), mr.TTL("folio:forever"))
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, err := cache.Get(context.Background(), "missing")
	assert.True(t, IsCacheMiss(err))
}

func TestRedisCache_Expiration(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	exists, err := cache.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, key := range []string{"collection-handles", "collection-blog", "collection-blog-entries", "collection-news"} {
		require.NoError(t, cache.Set(ctx, key, []byte(key), 0))
	}
	require.NoError(t, mr.Set("other:key", "untouched"))

	require.NoError(t, cache.Delete(ctx, "collection-handles"))
	require.NoError(t, cache.DeletePrefix(ctx, "collection-blog"))

	assert.False(t, mr.Exists("folio:collection-handles"))
	assert.False(t, mr.Exists("folio:collection-blog"))
	assert.False(t, mr.Exists("folio:collection-blog-entries"))
	assert.True(t, mr.Exists("folio:collection-news"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, mr.Exists("folio:collection-news"))
	assert.True(t, mr.Exists("other:key"))
}
