package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces per-officer hourly query limits using Redis counters.
// A nil Redis client disables limiting (development mode).
type Limiter struct {
	redis *redis.Client
}

// NewLimiter creates a rate limiter backed by the given Redis client
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{redis: client}
}

// Allow increments the counter for the given officer and reports whether
// the request fits within limit for the current hour window.
func (l *Limiter) Allow(ctx context.Context, officerID string, limit int) (bool, error) {
	if l.redis == nil || limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("ratelimit:query:%s:%s", officerID, time.Now().UTC().Format("2006010215"))

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	if count == 1 {
		// First hit in this window sets the expiry
		if err := l.redis.Expire(ctx, key, time.Hour).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Remaining reports how many requests are left in the current hour window
func (l *Limiter) Remaining(ctx context.Context, officerID string, limit int) (int, error) {
	if l.redis == nil || limit <= 0 {
		return limit, nil
	}

	key := fmt.Sprintf("ratelimit:query:%s:%s", officerID, time.Now().UTC().Format("2006010215"))

	count, err := l.redis.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return limit, nil
		}
		return 0, fmt.Errorf("rate limit get: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
