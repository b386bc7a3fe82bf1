package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"storefront-api/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const (
	cartTTL    = 15 * time.Minute
	cartJitter = 2 * time.Minute
)

// CartCache keeps the read view of a customer's cart.
type CartCache interface {
	Get(ctx context.Context, customerID string) (*model.Cart, error)
	Set(ctx context.Context, customerID string, cart *model.Cart) error
	Delete(ctx context.Context, customerID string) error
}

type RedisCartCache struct {
	client *redis.Client
}

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{client: client}
}

func cartKey(customerID string) string {
	return "cart:" + customerID
}

func (c *RedisCartCache) Get(ctx context.Context, customerID string) (*model.Cart, error) {
	data, err := c.client.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return &cart, nil
}

func (c *RedisCartCache) Set(ctx context.Context, customerID string, cart *model.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	ttl := cartTTL + time.Duration(rand.Int64N(int64(cartJitter)))
	if err := c.client.Set(ctx, cartKey(customerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, customerID string) error {
	if err := c.client.Del(ctx, cartKey(customerID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// NopCartCache is used when no Redis is configured; every Get misses.
type NopCartCache struct{}

func (NopCartCache) Get(context.Context, string) (*model.Cart, error) { return nil, ErrCacheMiss }
func (NopCartCache) Set(context.Context, string, *model.Cart) error   { return nil }
func (NopCartCache) Delete(context.Context, string) error             { return nil }
