package ratelimit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/osintdesk/console-api/internal/pkg/ratelimit"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	return client
}

func TestAllowCountsDown(t *testing.T) {
	client := setupRedis(t)
	defer client.Close()

	limiter := ratelimit.NewLimiter(client)
	officerID := fmt.Sprintf("test-%s", uuid.New())
	ctx := context.Background()

	const limit = 3
	for i := 0; i < limit; i++ {
		allowed, err := limiter.Allow(ctx, officerID, limit)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be within limit %d", i+1, limit)
		}

		remaining, err := limiter.Remaining(ctx, officerID, limit)
		if err != nil {
			t.Fatalf("remaining: %v", err)
		}
		if remaining != limit-i-1 {
			t.Fatalf("after %d requests expected %d remaining, got %d", i+1, limit-i-1, remaining)
		}
	}

	allowed, err := limiter.Allow(ctx, officerID, limit)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("request beyond the limit must be rejected")
	}

	remaining, err := limiter.Remaining(ctx, officerID, limit)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected 0 remaining past the limit, got %d", remaining)
	}
}

func TestNilClientAllowsEverything(t *testing.T) {
	limiter := ratelimit.NewLimiter(nil)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "anyone", 1)
	if err != nil || !allowed {
		t.Fatalf("nil client must admit requests: allowed=%v err=%v", allowed, err)
	}

	remaining, err := limiter.Remaining(ctx, "anyone", 5)
	if err != nil || remaining != 5 {
		t.Fatalf("nil client reports the full limit: remaining=%d err=%v", remaining, err)
	}
}
