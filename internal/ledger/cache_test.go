package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheVersionInitialisesToOne(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	key, err := c.BuildKey(ctx, "inventory-preview", "2024-05-01", "2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, "ledger:v1:inventory-preview:2024-05-01:2024-05-31", key)
}

func TestCacheRoundTripAndBump(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "balance", "cash")
	require.NoError(t, err)
	require.NoError(t, c.SetJSON(ctx, key, map[string]float64{"balance": 125.5}))

	var out map[string]float64
	hit, err := c.GetJSON(ctx, key, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 125.5, out["balance"])

	// A mutation bumps the version so every old key stops resolving.
	require.NoError(t, c.Bump(ctx))
	fresh, err := c.BuildKey(ctx, "balance", "cash")
	require.NoError(t, err)
	assert.NotEqual(t, key, fresh)

	hit, err = c.GetJSON(ctx, fresh, &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheNilSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	require.NoError(t, c.Bump(ctx))
	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	hit, err := c.GetJSON(ctx, key, nil)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, c.SetJSON(ctx, key, 1))
}
