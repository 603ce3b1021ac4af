package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// rateLimiter 以固定窗口计数，窗口从第一次计数开始。
type rateLimiter struct {
	client redisRateCounter
	prefix string
	limit  int64
	window time.Duration
}

func newRateLimiter(client redisRateCounter, prefix string, limit int64, window time.Duration) *rateLimiter {
	return &rateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow 报告 key 在当前窗口内是否仍有额度；Redis 不可用时放行。
func (l *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}
	count, err := incrWithTTL(ctx, l.client, l.prefix+key, l.window)
	if err != nil {
		return true, err
	}
	return count <= l.limit, nil
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
