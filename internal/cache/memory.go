package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter is one token bucket plus the time it was last used.
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// MemoryLimiter is a per-process token bucket limiter keyed like the Redis one.
// It serves single-instance deployments that run without Redis.
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	idleTTL  time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewMemoryLimiter creates a MemoryLimiter. Buckets unused for longer than
// idleTTL are evicted by a background sweep; call Stop to end it.
func NewMemoryLimiter(idleTTL time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		limiters: make(map[string]*ipLimiter),
		idleTTL:  idleTTL,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	if idleTTL > 0 {
		go m.cleanupLoop()
	}
	return m
}

// CheckIPRateLimit consumes one token from the bucket for ip within scope.
// The bucket is created with ratePerSecond and burst on first use.
func (m *MemoryLimiter) CheckIPRateLimit(_ context.Context, scope, ip string, ratePerSecond float64, burst int) (*RateLimitResult, error) {
	now := m.now()
	lim := m.get(rateLimitKey(scope, ip), rate.Limit(ratePerSecond), burst, now)

	res := &RateLimitResult{
		Allowed: lim.AllowN(now, 1),
		ResetAt: now.Add(time.Duration(float64(time.Second) / ratePerSecond)),
	}
	res.Remaining = int64(math.Max(0, math.Floor(lim.TokensAt(now))))
	if !res.Allowed {
		retry := math.Ceil((1 - lim.TokensAt(now)) / ratePerSecond)
		res.RetryAfter = time.Duration(math.Max(1, retry)) * time.Second
	}
	return res, nil
}

// Len returns the number of tracked buckets.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

// Stop ends the background sweep.
func (m *MemoryLimiter) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *MemoryLimiter) get(key string, limit rate.Limit, burst int, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.limiters[key]; ok {
		l.lastAccess = now
		return l.limiter
	}
	l := &ipLimiter{limiter: rate.NewLimiter(limit, burst), lastAccess: now}
	m.limiters[key] = l
	return l.limiter
}

func (m *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(m.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle(m.now())
		case <-m.stopCh:
			return
		}
	}
}

// evictIdle drops buckets not used since now-idleTTL.
func (m *MemoryLimiter) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, l := range m.limiters {
		if now.Sub(l.lastAccess) > m.idleTTL {
			delete(m.limiters, key)
		}
	}
}
