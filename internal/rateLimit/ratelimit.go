// Package rateLimit throttles queue traffic per user and per source IP so a
// refresh-happy client cannot monopolize a restaurant's line.
package rateLimit

import (
	"context"
	"time"

	redisadapter "github.com/tableq/tableq/internal/adapters/redis"
)

const keyPrefix = "tableq:rl:"

type RateLimiter struct {
	redis *redisadapter.Cache
}

func NewRateLimiter(redis *redisadapter.Cache) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow counts a hit against key's fixed window and reports whether it stays
// within rate. Redis failures deny the request.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) bool {
	fullKey := keyPrefix + key

	pipe := rl.redis.Client().Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, period)

	if _, err := pipe.Exec(ctx); err != nil {
		return false
	}
	return incr.Val() <= int64(rate)
}
