package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) *RedisBalanceCache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisBalanceCache(client, 0)
}

func TestRedisBalanceCacheRoundTrip(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	_, found, err := c.GetBalance(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, found)

	want := decimal.RequireFromString("123.456789")
	require.NoError(t, c.SetBalance(ctx, "w1", want))

	got, found, err := c.GetBalance(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestRedisBalanceCachePreservesExactness(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	// A value that would lose precision through float64.
	want := decimal.RequireFromString("0.1000000000000000055")
	require.NoError(t, c.SetBalance(ctx, "w1", want))

	got, found, err := c.GetBalance(ctx, "w1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Equal(want))
}

func TestMemoryBalanceCache(t *testing.T) {
	c := NewMemoryBalanceCache()
	ctx := context.Background()

	_, found, err := c.GetBalance(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, found)

	want := decimal.RequireFromString("-5.25")
	require.NoError(t, c.SetBalance(ctx, "w1", want))

	got, found, err := c.GetBalance(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, got.Equal(want))
}
