package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/toystore_api/internal/cart"
)

// CartStorage persists carts in Redis as {"items":[...]} JSON.
// Each save refreshes the TTL.
type CartStorage struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewCartStorage creates a new CartStorage.
func NewCartStorage(redis *RedisClient, ttl time.Duration) *CartStorage {
	return &CartStorage{
		redis: redis,
		ttl:   ttl,
	}
}

// Load returns an empty cart when key is absent.
func (s *CartStorage) Load(ctx context.Context, key string) (*cart.Cart, error) {
	raw, err := s.redis.Get(ctx, key)
	if err != nil {
		if IsMiss(err) {
			return &cart.Cart{Items: []cart.Item{}}, nil
		}
		return nil, err
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &c, nil
}

func (s *CartStorage) Save(ctx context.Context, key string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return s.redis.Set(ctx, key, string(data), s.ttl)
}

func (s *CartStorage) Delete(ctx context.Context, key string) error {
	return s.redis.Delete(ctx, key)
}
