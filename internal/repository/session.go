package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/parkflow/parkflow/internal/model"
)

// CreateSession stores a session for an existing user.
func (r *Repository) CreateSession(ctx context.Context, session *model.Session) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		session.ID,
		session.UserID,
		session.Token,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return storeError("create session", err)
	}
	return nil
}

// GetSessionUser resolves a token to its owner. Only sessions whose
// expires_at is strictly after now count; anything else is ErrSessionNotFound.
func (r *Repository) GetSessionUser(ctx context.Context, token string, now time.Time) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, u.full_name, u.phone, u.role, u.tenant_id, u.is_active, u.created_at
		FROM users u
		INNER JOIN sessions s ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2 AND u.is_active
	`, token, now)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, storeError("get session user", err)
	}
	return user, nil
}

// DeleteSession removes the session for token. Deleting a missing token is not an error.
func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return storeError("delete session", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session with expires_at <= now
// and returns how many rows went away.
func (r *Repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, storeError("delete expired sessions", err)
	}
	return tag.RowsAffected(), nil
}
