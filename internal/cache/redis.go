package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clsh-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const clashTTL = 60 * time.Second

// RedisCache caches public clash-by-slug lookups. Every method returns an
// error on miss or backend failure; callers fall through to Postgres, so
// a dead Redis only costs latency.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a cache backed by a redis client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func clashKey(slug string) string {
	return "clash:" + slug
}

// GetClash retrieves a cached clash by slug
func (c *RedisCache) GetClash(ctx context.Context, slug string) (*models.Clash, error) {
	data, err := c.client.Get(ctx, clashKey(slug)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("cache miss for %s: %w", slug, err)
	}
	var clash models.Clash
	if err := json.Unmarshal(data, &clash); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached clash: %w", err)
	}
	return &clash, nil
}

// SetClash caches a clash under its slug
func (c *RedisCache) SetClash(ctx context.Context, clash *models.Clash) error {
	data, err := json.Marshal(clash)
	if err != nil {
		return fmt.Errorf("failed to marshal clash: %w", err)
	}
	if err := c.client.Set(ctx, clashKey(clash.Slug), data, clashTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache clash: %w", err)
	}
	return nil
}

// InvalidateClash drops a cached clash after mutation
func (c *RedisCache) InvalidateClash(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, clashKey(slug)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate clash: %w", err)
	}
	return nil
}
