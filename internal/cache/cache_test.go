package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/toystore_api/internal/cart"
	"github.com/GTDGit/toystore_api/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisClientFromClient(client)
}

func TestCartStorage_RoundTrip(t *testing.T) {
	mr, rc := setupRedis(t)
	storage := NewCartStorage(rc, 720*time.Hour)
	store := cart.NewStore(storage)
	ctx := context.Background()

	_, err := store.Update(ctx, "c1", func(c *cart.Cart) error {
		c.AddItem(cart.Item{VariantID: 7, Name: "Doll", Price: decimal.NewFromInt(250000)})
		c.AddItem(cart.Item{VariantID: 7, Name: "Doll", Price: decimal.NewFromInt(250000)})
		return nil
	})
	require.NoError(t, err)

	assert.True(t, mr.Exists("cart-storage:c1"))
	assert.Equal(t, 720*time.Hour, mr.TTL("cart-storage:c1"))

	raw, err := mr.Get("cart-storage:c1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"items":[`)

	loaded, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.ItemQty(7))
	assert.True(t, decimal.NewFromInt(500000).Equal(loaded.TotalPrice()))
}

func TestCartStorage_MissingKey(t *testing.T) {
	_, rc := setupRedis(t)
	c, err := NewCartStorage(rc, time.Hour).Load(context.Background(), "cart-storage:none")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCartStorage_EmptyCartDeletesKey(t *testing.T) {
	mr, rc := setupRedis(t)
	store := cart.NewStore(NewCartStorage(rc, time.Hour))
	ctx := context.Background()

	_, err := store.Update(ctx, "c1", func(c *cart.Cart) error {
		c.AddItem(cart.Item{VariantID: 1, Price: decimal.NewFromInt(10)})
		return nil
	})
	require.NoError(t, err)

	_, err = store.Update(ctx, "c1", func(c *cart.Cart) error {
		c.UpdateQty(1, 0)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart-storage:c1"))
}

func TestCartStorage_CorruptValue(t *testing.T) {
	mr, rc := setupRedis(t)
	require.NoError(t, mr.Set("cart-storage:bad", "{not json"))

	_, err := NewCartStorage(rc, time.Hour).Load(context.Background(), "cart-storage:bad")
	assert.Error(t, err)
}

func TestDashboardCache(t *testing.T) {
	mr, rc := setupRedis(t)
	dc := NewDashboardCache(rc, 30*time.Second)
	ctx := context.Background()

	got, err := dc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	stats := &models.DashboardStats{
		TotalProducts:    3,
		TotalRevenue:     decimal.RequireFromString("938000"),
		LowStockProducts: []models.LowStockProduct{{ID: 1, Name: "Lego", Stock: 2}},
	}
	require.NoError(t, dc.Set(ctx, stats))
	assert.Equal(t, 30*time.Second, mr.TTL(dashboardKey))

	got, err = dc.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalProducts)
	assert.True(t, stats.TotalRevenue.Equal(got.TotalRevenue))
	assert.Equal(t, 2, got.LowStockProducts[0].Stock)

	mr.FastForward(31 * time.Second)
	got, err = dc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, dc.Set(ctx, stats))
	require.NoError(t, dc.Invalidate(ctx))
	assert.False(t, mr.Exists(dashboardKey))
}
