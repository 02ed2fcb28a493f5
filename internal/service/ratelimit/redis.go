package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow is a fixed-window limiter shared by every instance that points
// at the same Redis. Each key may be used limit times per window.
type RedisWindow struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
}

func NewRedisWindow(client redis.Cmdable, limit int64, window time.Duration, prefix string) *RedisWindow {
	return &RedisWindow{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (l *RedisWindow) key(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", l.prefix, key)
}

// Allow increments the key's counter for the current window.
func (l *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}

	return incr.Val() <= l.limit, nil
}
