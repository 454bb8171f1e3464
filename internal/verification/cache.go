package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"civreg/internal/application/models"
	platformredis "civreg/internal/platform/redis"
	"civreg/pkg/platform/sentinel"
)

// Result is the public verification snapshot served to QR scanners.
type Result struct {
	UID      string        `json:"uid"`
	FullName string        `json:"fullName"`
	Status   models.Status `json:"status"`
	Valid    bool          `json:"valid"`
}

// StatusCache is the read-through cache in front of the public verify
// endpoint. Get returns sentinel.ErrNotFound on a miss.
type StatusCache interface {
	Get(ctx context.Context, uid string) (*Result, error)
	Set(ctx context.Context, uid string, result *Result) error
	Invalidate(ctx context.Context, uid string) error
}

const cacheKeyPrefix = "civreg:verify:"

// RedisCache caches verification results with a TTL bounding staleness after
// an administrative correction that raced the invalidation.
type RedisCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewRedisCache(client *platformredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, uid string) (*Result, error) {
	payload, err := c.client.Get(ctx, cacheKeyPrefix+uid).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, uid string, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+uid, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, uid string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+uid).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// NoopCache is used when Redis is not configured; every lookup goes to the
// repository.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, uid string) (*Result, error) {
	return nil, sentinel.ErrNotFound
}

func (NoopCache) Set(ctx context.Context, uid string, result *Result) error { return nil }

func (NoopCache) Invalidate(ctx context.Context, uid string) error { return nil }
