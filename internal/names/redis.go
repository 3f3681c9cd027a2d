package names

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "gitnostr:name:"

// DefaultRedisTTL is how long a cached name lives before the resolver looks
// the author up again.
const DefaultRedisTTL = 24 * time.Hour

// RedisCache is a Cache shared between processes.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client. A ttl of zero or less keeps names forever.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// DialRedis connects to the Redis server at url and checks it responds.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, pubkey string) (string, bool, error) {
	name, err := c.client.Get(ctx, redisKeyPrefix+pubkey).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get name: %w", err)
	}
	return name, true, nil
}

// Put implements Cache.
func (c *RedisCache) Put(ctx context.Context, pubkey, name string) error {
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, redisKeyPrefix+pubkey, name, ttl).Err(); err != nil {
		return fmt.Errorf("redis put name: %w", err)
	}
	return nil
}
