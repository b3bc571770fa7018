package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"inventory-service/internal/domain/model"
	"inventory-service/internal/infra/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *cache.RedisStockCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client, err := cache.NewRedisClient(context.Background(), cache.RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:inventory:" + time.Now().Format("150405.000000000")
	return cache.NewRedisStockCache(client, prefix)
}

func TestRedisStockCache_MissReturnsFalse(t *testing.T) {
	c := newTestCache(t)

	_, ok, gen, err := c.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(0), gen)
}

func TestRedisStockCache_FillGetInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, _, gen, err := c.Get(ctx, 7)
	require.NoError(t, err)

	filled, err := c.Fill(ctx, model.Inventory{ProductID: 7, Stock: 12}, gen, time.Minute)
	require.NoError(t, err)
	assert.True(t, filled)

	got, ok, _, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.Inventory{ProductID: 7, Stock: 12}, got)

	require.NoError(t, c.Invalidate(ctx, 7))

	_, ok, newGen, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gen+1, newGen)
}

// Getの後にInvalidateが入ったら、古い世代での書き戻しは捨てる
func TestRedisStockCache_FillRejectedAfterInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, _, gen, err := c.Get(ctx, 9)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, 9))

	filled, err := c.Fill(ctx, model.Inventory{ProductID: 9, Stock: 3}, gen, time.Minute)
	require.NoError(t, err)
	assert.False(t, filled)

	_, ok, _, err := c.Get(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStockCache_Expires(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	filled, err := c.Fill(ctx, model.Inventory{ProductID: 8, Stock: 1}, 0, 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, filled)
	time.Sleep(150 * time.Millisecond)

	_, ok, _, err := c.Get(ctx, 8)
	require.NoError(t, err)
	assert.False(t, ok)
}
