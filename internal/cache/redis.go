package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProvider implements Provider over a redis instance. Staleness is
// tracked by remaining TTL: an entry is stale once its remaining lifetime
// drops below TTL - StaleAge.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
	stale  time.Duration
}

func NewRedisProvider(client *redis.Client, cfg Config) *RedisProvider {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	stale := cfg.StaleAge
	if stale <= 0 || stale > ttl {
		stale = ttl / 2
	}
	return &RedisProvider{client: client, ttl: ttl, stale: stale}
}

func (p *RedisProvider) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return value, nil
}

func (p *RedisProvider) Set(ctx context.Context, key string, value []byte) error {
	if err := p.client.Set(ctx, key, value, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (p *RedisProvider) Invalidate(ctx context.Context, prefix string) error {
	iter := p.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache prefix %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := p.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache prefix %s: %w", prefix, err)
	}
	return nil
}

func (p *RedisProvider) IsStale(ctx context.Context, key string) (bool, error) {
	remaining, err := p.client.TTL(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("failed to read ttl for cache key %s: %w", key, err)
	}
	// -2 no key, -1 no expiry
	if remaining < 0 {
		return true, nil
	}
	return remaining < p.ttl-p.stale, nil
}
