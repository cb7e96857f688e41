package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fixwell/pkg/logger"
)

// RedisSlotCache is the multi-instance backend. Several availability
// replicas share one listing, and the event consumer on any replica
// invalidates for all of them.
type RedisSlotCache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisSlotCache(client *redis.Client, log *logger.Logger) *RedisSlotCache {
	return &RedisSlotCache{
		client: client,
		log:    log,
	}
}

func (c *RedisSlotCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Slot cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return value, true
}

func (c *RedisSlotCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.Warn("Slot cache write failed", "key", key, "error", err)
	}
}

func (c *RedisSlotCache) InvalidateDate(ctx context.Context, date string) {
	pattern := datePrefix(date) + "*"

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.log.Warn("Slot cache invalidation scan failed", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.log.Warn("Slot cache invalidation delete failed", "pattern", pattern, "error", err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Stop is a no-op; the Redis client is shared and closed by the
// application shutdown path.
func (c *RedisSlotCache) Stop() {}
