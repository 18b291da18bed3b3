package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_Reserve(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	ok, err := store.Reserve(ctx, "event-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim on the same key loses.
	ok, err = store.Reserve(ctx, "event-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different key is unaffected.
	ok, err = store.Reserve(ctx, "event-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// The claim expires with its TTL.
	mr.FastForward(2 * time.Minute)
	ok, err = store.Reserve(ctx, "event-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_Release(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	ok, err := store.Reserve(ctx, "event-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Release(ctx, "event-1"))

	ok, err = store.Reserve(ctx, "event-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_IncrAttempts(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	for expected := 1; expected <= 3; expected++ {
		count, err := store.IncrAttempts(ctx, "event-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, expected, count)
	}

	// Counter resets after its TTL.
	mr.FastForward(2 * time.Minute)
	count, err := store.IncrAttempts(ctx, "event-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
