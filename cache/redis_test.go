package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/minipost/models"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	_, ok := store.Get(ctx, 7)
	assert.False(t, ok)

	store.Set(ctx, 7, []models.Post{{ID: 3, OwnerID: 7, Text: "cached"}})
	assert.True(t, mr.Exists("cache:user:7:posts"))

	got, ok := store.Get(ctx, 7)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, uint(3), got[0].ID)
	assert.Equal(t, "cached", got[0].Text)

	store.Invalidate(ctx, 7)
	_, ok = store.Get(ctx, 7)
	assert.False(t, ok)
}

func TestRedisStoreEmptyListIsAHit(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, time.Minute)

	store.Set(ctx, 1, []models.Post{})
	got, ok := store.Get(ctx, 1)
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRedisStoreExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, 300*time.Second)

	store.Set(ctx, 1, []models.Post{})
	mr.FastForward(299 * time.Second)
	_, ok := store.Get(ctx, 1)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)
	_, ok = store.Get(ctx, 1)
	assert.False(t, ok)
}

func TestRedisStoreDownIsAMiss(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)
	store.Set(ctx, 1, []models.Post{})
	mr.Close()

	_, ok := store.Get(ctx, 1)
	assert.False(t, ok)
	store.Set(ctx, 1, []models.Post{})
	store.Invalidate(ctx, 1)
}

func TestRedisStoreCorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)
	require.NoError(t, mr.Set("cache:user:5:posts", "not json"))

	_, ok := store.Get(ctx, 5)
	assert.False(t, ok)
}
