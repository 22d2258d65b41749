package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ratelimit:"

// RedisLimiter counts requests in Redis, one counter per client per window.
// INCR and EXPIRE NX run in a single pipeline, so concurrent requests from
// the same client increment atomically and the window starts exactly once.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a limiter from a Redis URL (redis://:pass@host:6379/0)
// Fails fast when the server is unreachable
func NewRedisLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("bad redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &RedisLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		prefix: defaultKeyPrefix,
	}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	rkey := l.prefix + key

	pipe := l.rdb.TxPipeline()
	count := pipe.Incr(ctx, rkey)
	pipe.ExpireNX(ctx, rkey, l.window)
	ttl := pipe.TTL(ctx, rkey)

	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("redis error: %w", err)
	}

	n := count.Val()
	if n > l.limit {
		retryAfter := ttl.Val()
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: int(l.limit - n)}, nil
}

func (l *RedisLimiter) Close() error {
	return l.rdb.Close()
}
