package reaper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/parkflow/parkflow/internal/metrics"
	"github.com/parkflow/parkflow/internal/model"
	"github.com/parkflow/parkflow/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep_DeletesOnlyExpired(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

	userID := store.PutUser(&model.User{Email: "r@example.com", FullName: "R", IsActive: true})
	store.PutSession(&model.Session{ID: "a", UserID: userID, Token: "past", ExpiresAt: now.Add(-time.Minute)})
	store.PutSession(&model.Session{ID: "b", UserID: userID, Token: "boundary", ExpiresAt: now})
	store.PutSession(&model.Session{ID: "c", UserID: userID, Token: "future", ExpiresAt: now.Add(time.Nanosecond)})

	rec := metrics.NewInMemory()
	r := New(store, quietLogger(), rec, time.Hour)
	r.now = func() time.Time { return now }

	n, err := r.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Sweep() = %d, want 2", n)
	}
	if _, ok := store.Session("future"); !ok {
		t.Error("unexpired session was deleted")
	}
	for _, token := range []string{"past", "boundary"} {
		if _, ok := store.Session(token); ok {
			t.Errorf("expired session %q survived", token)
		}
	}
	if got := rec.Snapshot().SessionsReaped; got != 2 {
		t.Errorf("SessionsReaped = %d, want 2", got)
	}
}

func TestSweep_StoreError(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	store.Err = errors.New("db down")

	r := New(store, quietLogger(), nil, time.Hour)
	if _, err := r.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_SweepsAndShutsDown(t *testing.T) {
	t.Parallel()

	store := testutil.NewMemoryStore()
	userID := store.PutUser(&model.User{Email: "s@example.com", FullName: "S", IsActive: true})
	store.PutSession(&model.Session{ID: "a", UserID: userID, Token: "old", ExpiresAt: time.Now().Add(-time.Hour)})

	r := New(store, quietLogger(), nil, time.Hour)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for store.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("initial sweep did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRun_TwiceFails(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewMemoryStore(), quietLogger(), nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		r.mu.Lock()
		started := r.started
		r.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("reaper did not start")
		}
		time.Sleep(time.Millisecond)
	}

	if err := r.Run(ctx); err == nil {
		t.Fatal("expected error on second Run")
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	t.Parallel()

	r := New(testutil.NewMemoryStore(), quietLogger(), nil, 0)
	if r.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", r.interval, DefaultInterval)
	}
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
