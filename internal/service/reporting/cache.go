package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

const cacheKeyPrefix = "sales:day:"

// RedisCache keeps closed-day summaries in Redis as JSON.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a Redis client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(date models.Date) string {
	return cacheKeyPrefix + date.String()
}

// Get returns the cached summary for date, if any.
func (c *RedisCache) Get(ctx context.Context, date models.Date) (models.DailySalesSummary, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DailySalesSummary{}, false, nil
	}
	if err != nil {
		return models.DailySalesSummary{}, false, fmt.Errorf("redis get %s: %w", cacheKey(date), err)
	}
	var summary models.DailySalesSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return models.DailySalesSummary{}, false, fmt.Errorf("decode cached summary: %w", err)
	}
	return summary, true, nil
}

// Set stores an available summary. Unavailable summaries are never cached.
func (c *RedisCache) Set(ctx context.Context, summary models.DailySalesSummary) error {
	if !summary.Available() {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(summary.Date), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", cacheKey(summary.Date), err)
	}
	return nil
}
