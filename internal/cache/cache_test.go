package cache

import (
	"context"
	"testing"
	"time"

	"storefront-api/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCartCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCartCache(client), mr
}

func TestRedisCartCache_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "cust-1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	cart := &model.Cart{
		ID:         "cart-1",
		CustomerID: "cust-1",
		Items: []model.CartItem{
			{ID: "item-1", CartID: "cart-1", VariantID: "v-1", Quantity: 2,
				Variant: &model.Variant{ID: "v-1", Price: decimal.RequireFromString("50.00")}},
		},
	}
	require.NoError(t, c.Set(ctx, "cust-1", cart))

	ttl := mr.TTL("cart:cust-1")
	assert.GreaterOrEqual(t, ttl, cartTTL)
	assert.Less(t, ttl, cartTTL+cartJitter)

	got, err := c.Get(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].Variant.Price.Equal(decimal.NewFromInt(50)))
}

func TestRedisCartCache_Delete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cust-1", &model.Cart{ID: "cart-1"}))
	require.NoError(t, c.Delete(ctx, "cust-1"))

	assert.False(t, mr.Exists("cart:cust-1"))
	_, err := c.Get(ctx, "cust-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCartCache_Expires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cust-1", &model.Cart{ID: "cart-1"}))
	mr.FastForward(cartTTL + cartJitter + time.Second)

	_, err := c.Get(ctx, "cust-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNopCartCache(t *testing.T) {
	var c CartCache = NopCartCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "cust-1", &model.Cart{ID: "cart-1"}))
	_, err := c.Get(ctx, "cust-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "cust-1"))
}
