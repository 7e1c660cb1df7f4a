package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ahse-server/internal/domain"
)

// RedisCache is a shared result cache backed by Redis. Entries carry an
// envelope with cache timestamps so operators can inspect staleness.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisCache connects to Redis and verifies the connection. rawURL is
// a redis:// or rediss:// URL; credentials and database number come from
// the URL itself.
func NewRedisCache(rawURL string, ttl time.Duration, logger *logrus.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, ttl: ttl, log: logger}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*domain.SimulationResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Redis read failed")
		return nil, false
	}

	var entry cachedResult
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Dropping unreadable cache entry")
		_ = c.client.Del(ctx, key).Err()
		return nil, false
	}
	return entry.Result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *domain.SimulationResult) error {
	now := time.Now().UTC()
	entry := cachedResult{
		Result:    result,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
