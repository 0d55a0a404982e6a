package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"plain error", errors.New("unique something"), "", false},
		{"unique violation", &pgconn.PgError{Code: "23505"}, "", true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), "", true},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, "", false},
		{"email constraint", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, emailConstraint, true},
		{"token constraint", &pgconn.PgError{Code: "23505", ConstraintName: "sessions_token_key"}, emailConstraint, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isUniqueViolation(tt.err, tt.constraint); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreError_CarriesCode(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "57P01", Message: "terminating connection"}
	err := storeError("get session user", pgErr)

	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StoreError, got %T", err)
	}
	if se.Code != "57P01" {
		t.Errorf("Code = %q, want 57P01", se.Code)
	}
	if se.Op != "get session user" {
		t.Errorf("Op = %q", se.Op)
	}
	if !errors.Is(err, pgErr) {
		t.Error("StoreError should unwrap to the driver error")
	}
}

func TestStoreError_WithoutCode(t *testing.T) {
	t.Parallel()

	err := storeError("delete session", context.DeadlineExceeded)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected wrapped context.DeadlineExceeded")
	}
	if got := err.Error(); got != "delete session: context deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
}
