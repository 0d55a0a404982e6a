// Package reaper periodically deletes expired sessions.
package reaper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/parkflow/parkflow/internal/metrics"
)

// DefaultInterval is how often expired sessions are purged.
const DefaultInterval = time.Hour

// Store removes sessions whose expiry is at or before now.
type Store interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Reaper purges expired session rows on a fixed interval. Expired sessions are
// already rejected on read; this only bounds table growth.
type Reaper struct {
	store    Store
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration
	now      func() time.Time

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// New creates a Reaper. A non-positive interval falls back to DefaultInterval.
func New(store Store, logger *slog.Logger, recorder metrics.Recorder, interval time.Duration) *Reaper {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reaper{
		store:    store,
		logger:   logger.With("component", "session.reaper"),
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then every interval until ctx is cancelled
// or Shutdown is called.
func (r *Reaper) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("reaper already started")
	}
	r.started = true
	r.done = make(chan struct{})
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	defer close(r.done)

	r.logger.Info("session reaper started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("session sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("session reaper stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep deletes every session expired as of now and returns how many went.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteExpiredSessions(ctx, r.now())
	if err != nil {
		return 0, err
	}
	r.metrics.AddSessionsReaped(n)
	if n > 0 {
		r.logger.Info("expired sessions deleted", "count", n)
	}
	return n, nil
}

// Shutdown stops the loop and waits for an in-flight sweep.
// It implements server.ShutdownFunc.
func (r *Reaper) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn("session reaper shutdown timed out")
		return ctx.Err()
	}
}
