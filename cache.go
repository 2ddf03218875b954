package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds serialized projection and plan responses. Strictly
// best-effort: a miss or a backend error only means recomputing.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	// Invalidate deletes keys; a trailing "*" deletes by pattern.
	Invalidate(ctx context.Context, keys ...string)
}

// planCachePrefix matches every cached plan for the owner, whatever the
// budget and strategy parameters were.
func planCachePrefix(ownerID uuid.UUID) string {
	return "plan:" + ownerID.String() + ":*"
}

func planCacheKey(ownerID uuid.UUID, budget Money, strategy Strategy, months int) string {
	return fmt.Sprintf("plan:%s:%s:%s:%d", ownerID, budget, strategy, months)
}

// projectionCachePrefix matches every cached projection for the debt,
// whatever the payment parameters were.
func projectionCachePrefix(debtID uuid.UUID) string {
	return "proj:" + debtID.String() + ":*"
}

func projectionCacheKey(debtID uuid.UUID, monthly, extra Money, horizon int) string {
	return fmt.Sprintf("proj:%s:%s:%s:%d", debtID, monthly, extra, horizon)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if strings.HasSuffix(key, "*") {
			matches, err := c.client.Keys(ctx, key).Result()
			if err != nil || len(matches) == 0 {
				continue
			}
			c.client.Del(ctx, matches...)
			continue
		}
		c.client.Del(ctx, key)
	}
}

// noopCache stands in when no redis address is configured.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string) (string, bool)          { return "", false }
func (noopCache) Set(ctx context.Context, key, value string, t time.Duration) {}
func (noopCache) Invalidate(ctx context.Context, keys ...string)              {}
