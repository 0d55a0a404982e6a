package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()

	m := NewMemoryLimiter(0)
	defer m.Stop()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := m.CheckIPRateLimit(ctx, "signup", "10.0.0.1", 1, 3)
		if err != nil {
			t.Fatalf("CheckIPRateLimit() error = %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res, err := m.CheckIPRateLimit(ctx, "signup", "10.0.0.1", 1, 3)
	if err != nil {
		t.Fatalf("CheckIPRateLimit() error = %v", err)
	}
	if res.Allowed {
		t.Fatal("request beyond burst should be denied")
	}
	if res.RetryAfter < time.Second {
		t.Errorf("RetryAfter = %v, want at least 1s", res.RetryAfter)
	}

	// A different IP and a different scope each have their own bucket.
	if res, _ := m.CheckIPRateLimit(ctx, "signup", "10.0.0.2", 1, 3); !res.Allowed {
		t.Error("other IP should not be limited")
	}
	if res, _ := m.CheckIPRateLimit(ctx, "login", "10.0.0.1", 1, 3); !res.Allowed {
		t.Error("other scope should not be limited")
	}

	// Tokens refill over time.
	m.now = func() time.Time { return base.Add(2 * time.Second) }
	if res, _ := m.CheckIPRateLimit(ctx, "signup", "10.0.0.1", 1, 3); !res.Allowed {
		t.Error("bucket should refill after 2s")
	}
}

func TestMemoryLimiter_EvictIdle(t *testing.T) {
	t.Parallel()

	m := NewMemoryLimiter(0)
	defer m.Stop()
	m.idleTTL = time.Minute
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	ctx := context.Background()
	_, _ = m.CheckIPRateLimit(ctx, "login", "10.0.0.1", 1, 1)
	m.now = func() time.Time { return base.Add(50 * time.Second) }
	_, _ = m.CheckIPRateLimit(ctx, "login", "10.0.0.2", 1, 1)

	m.evictIdle(base.Add(90 * time.Second))

	if got := m.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

func TestMemoryLimiter_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	m := NewMemoryLimiter(time.Hour)
	m.Stop()
	m.Stop()
}
