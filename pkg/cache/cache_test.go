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

func TestDisconnectedCacheIsANoop(t *testing.T) {
	Use(nil)
	ctx := context.Background()

	assert.False(t, Available())
	require.NoError(t, Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	assert.False(t, Get(ctx, "k", &out))
	assert.NoError(t, Del(ctx, "k"))
	assert.NoError(t, Close())
}

func TestRedisRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	Use(client)
	t.Cleanup(func() { _ = Close() })
	ctx := context.Background()

	require.True(t, Available())
	require.NoError(t, Set(ctx, "catalog:categories", []string{"Cards", "Frames"}, time.Minute))

	var got []string
	require.True(t, Get(ctx, "catalog:categories", &got))
	assert.Equal(t, []string{"Cards", "Frames"}, got)

	mr.FastForward(2 * time.Minute)
	assert.False(t, Get(ctx, "catalog:categories", &got))

	require.NoError(t, Set(ctx, "k", 1, time.Minute))
	require.NoError(t, Del(ctx, "k"))
	var n int
	assert.False(t, Get(ctx, "k", &n))
}
