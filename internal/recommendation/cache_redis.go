// internal/recommendation/cache_redis.go
package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"college-fit-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "recommendations:user:"

// RedisCache stores the entry as one JSON value. Keys expire a little after the
// freshness window so stale lists do not pile up; freshness itself is still
// judged on generated_at.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func RedisKey(userID string) string {
	return redisKeyPrefix + userID
}

func (c *RedisCache) Get(ctx context.Context, userID string) (*models.CacheEntry, error) {
	val, err := c.client.Get(ctx, RedisKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrCacheRead, err)
	}
	entry.GeneratedAt = entry.GeneratedAt.UTC()
	return &entry, nil
}

// Put overwrites the key in a MULTI/EXEC block; a failed write leaves the old value.
func (c *RedisCache) Put(ctx context.Context, userID string, recs []models.Recommendation, generatedAt time.Time) error {
	if recs == nil {
		recs = []models.Recommendation{}
	}
	payload, err := json.Marshal(models.CacheEntry{
		UserID:          userID,
		Recommendations: recs,
		GeneratedAt:     generatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}

	key := RedisKey(userID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Set(ctx, key, payload, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write recommendation cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, RedisKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate recommendation cache: %w", err)
	}
	return nil
}
