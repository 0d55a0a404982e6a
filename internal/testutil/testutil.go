// Package testutil holds helpers shared by unit and integration tests.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/parkflow/parkflow/internal/model"
	"github.com/parkflow/parkflow/internal/repository"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730730

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema runs every embedded down migration (newest first) and then
// every up migration, leaving empty users and sessions tables.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := repository.MigrationsFS()

	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	var ups, downs []string
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups = append(ups, e.Name())
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs = append(downs, e.Name())
		}
	}
	sort.Strings(ups)
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))

	for _, name := range append(downs, ups...) {
		sql, err := fs.ReadFile(migrations, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates an active customer with a unique lowercase email.
// PasswordHash is a placeholder; hash a real password when login matters.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		Email:        UniqueEmail("user"),
		PasswordHash: "$argon2id$placeholder",
		FullName:     "Test User",
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
}

// NewTestSession creates a session for userID expiring at expiresAt.
func NewTestSession(t testing.TB, userID int64, expiresAt time.Time) *model.Session {
	t.Helper()
	return &model.Session{
		ID:        UniqueID("sess"),
		UserID:    userID,
		Token:     UniqueID("token"),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
}

var uniqueSeq atomic.Uint64

// UniqueID generates an ID that is unique within the test binary and
// unlikely to repeat across runs sharing a database.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniqueSeq.Add(1))
}

// UniqueEmail generates a unique lowercase email for tests.
func UniqueEmail(prefix string) string {
	return UniqueID(prefix) + "@parkflow.test"
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
