package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/parkflow/parkflow/internal/model"
)

const userColumns = `id, email, password_hash, full_name, phone, role, tenant_id, is_active, created_at`

// EmailExists reports whether an account is registered under email.
// The caller is expected to pass the normalized (lowercase) address.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, storeError("check existing user", err)
	}
	return exists, nil
}

// CreateUserWithSession inserts the user and its first session in one
// transaction. On success user.ID and user.CreatedAt are filled in and
// session.UserID points at the new row. A duplicate email yields ErrEmailExists
// and leaves no rows behind.
func (r *Repository) CreateUserWithSession(ctx context.Context, user *model.User, session *model.Session) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, full_name, phone, role, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`,
			user.Email,
			user.PasswordHash,
			user.FullName,
			user.Phone,
			user.Role,
			user.IsActive,
		).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			return err
		}

		session.UserID = user.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO sessions (id, user_id, token, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			session.ID,
			session.UserID,
			session.Token,
			session.ExpiresAt,
			session.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, emailConstraint) {
			return ErrEmailExists
		}
		return storeError("create user", err)
	}

	return nil
}

// GetUserByEmail retrieves a user, including the password hash, by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("get user by email", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Phone,
		&u.Role,
		&u.TenantID,
		&u.IsActive,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
