// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/parkflow/parkflow/internal/auth"
	"github.com/parkflow/parkflow/internal/metrics"
	"github.com/parkflow/parkflow/internal/model"
	"github.com/parkflow/parkflow/internal/repository"
)

// Service errors.
var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Store is the persistence the auth flows need.
// *repository.Repository implements it against PostgreSQL.
type Store interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUserWithSession(ctx context.Context, user *model.User, session *model.Session) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionUser(ctx context.Context, token string, now time.Time) (*model.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService implements signup, login, logout and session checks.
type AuthService struct {
	store   Store
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(store Store, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		metrics: recorder,
		now:     time.Now,
	}
}

// SignupInput defines input for creating an account.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// AuthResult is a user together with the session just issued for it.
type AuthResult struct {
	User    *model.User
	Session *model.Session
}

// Signup validates input, creates the user and its first session.
// Validation failures are *auth.ValidationError and happen before any store access.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	if err := validateSignup(email, input.Password, fullName, input.Phone); err != nil {
		s.metrics.IncSignup(metrics.SignupInvalid)
		return nil, err
	}
	email = strings.ToLower(email)

	// Fast path only; the unique constraint decides races.
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		s.metrics.IncSignup(metrics.SignupError)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		s.metrics.IncSignup(metrics.SignupConflict)
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.metrics.IncSignup(metrics.SignupError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	session, err := s.newSession(0)
	if err != nil {
		s.metrics.IncSignup(metrics.SignupError)
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
	if input.Phone != "" {
		phone := input.Phone
		user.Phone = &phone
	}

	if err := s.store.CreateUserWithSession(ctx, user, session); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncSignup(metrics.SignupConflict)
			return nil, ErrEmailTaken
		}
		s.metrics.IncSignup(metrics.SignupError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncSignup(metrics.SignupCreated)
	return &AuthResult{User: user, Session: session}, nil
}

// Login verifies credentials and issues a new session.
// Unknown emails, wrong passwords and inactive accounts all yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.metrics.IncLogin(metrics.LoginInvalid)
		return nil, &auth.ValidationError{Field: "email", Message: "Email and password are required"}
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.VerifyDummy(password)
			s.metrics.IncLogin(metrics.LoginUnauthorized)
			return nil, ErrInvalidCredentials
		}
		s.metrics.IncLogin(metrics.LoginError)
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok || !user.IsActive {
		s.metrics.IncLogin(metrics.LoginUnauthorized)
		return nil, ErrInvalidCredentials
	}

	session, err := s.newSession(user.ID)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, err
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	return &AuthResult{User: user, Session: session}, nil
}

// CurrentUser resolves a session token to its user. An empty, unknown or
// expired token yields ErrNotAuthenticated. Validity is decided by the
// store on every call.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		s.metrics.IncSessionCheck(metrics.SessionAnonymous)
		return nil, ErrNotAuthenticated
	}

	user, err := s.store.GetSessionUser(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			s.metrics.IncSessionCheck(metrics.SessionAnonymous)
			return nil, ErrNotAuthenticated
		}
		s.metrics.IncSessionCheck(metrics.SessionError)
		return nil, fmt.Errorf("get session user: %w", err)
	}

	s.metrics.IncSessionCheck(metrics.SessionAuthenticated)
	return user, nil
}

// Logout revokes the session for token. It is idempotent and an empty
// token is a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	s.metrics.IncLogout()
	if token == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) newSession(userID int64) (*model.Session, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return &model.Session{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: auth.TokenExpiration(now),
		CreatedAt: now,
	}, nil
}

// validateSignup applies the signup rules in order and returns the first failure.
func validateSignup(email, password, fullName, phone string) error {
	if email == "" || password == "" || fullName == "" {
		return &auth.ValidationError{Field: "required", Message: "Email, password, and full name are required"}
	}
	if !auth.IsValidEmail(email) {
		return &auth.ValidationError{Field: "email", Message: "Invalid email format"}
	}
	if err := auth.ValidatePhone(phone); err != nil {
		return err
	}
	return auth.ValidatePassword(password)
}
