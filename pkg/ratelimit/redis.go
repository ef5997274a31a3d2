package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces limiter keys
const DefaultRedisPrefix = "denoid:ratelimit"

// RedisLimiter is a fixed window limiter shared by every instance using the
// same Redis
type RedisLimiter struct {
	redis  *redis.Client
	config Config
	prefix string
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(client *redis.Client, config Config, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisLimiter{
		redis:  client,
		config: config,
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow implements Limiter. A Redis error is returned with Allowed set so
// callers can fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true, Limit: l.config.RequestsPerWindow}, fmt.Errorf("redis error: %w", err)
	}

	// The window is anchored at the first request, so only a key without
	// an expiry gets one.
	window := ttl.Val()
	if window <= 0 {
		window = l.config.Window
		if err := l.redis.PExpire(ctx, redisKey, window).Err(); err != nil {
			return Decision{Allowed: true, Limit: l.config.RequestsPerWindow}, fmt.Errorf("redis error: %w", err)
		}
	}

	count := int(incr.Val())
	return Decision{
		Allowed:   count <= l.config.RequestsPerWindow,
		Limit:     l.config.RequestsPerWindow,
		Remaining: max(0, l.config.RequestsPerWindow-count),
		Reset:     l.now().Add(window),
	}, nil
}

// Reset clears the window for a key
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, key)).Err()
}
