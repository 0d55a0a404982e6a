package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/parkflow/parkflow/internal/model"
	"github.com/parkflow/parkflow/internal/repository"
)

// MemoryStore is an in-memory stand-in for the Postgres repository.
// It mirrors the repository's contract: lowercase unique emails, strict
// expiry comparison, idempotent session deletion and the same sentinel errors.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	byEmail  map[string]int64
	sessions map[string]*model.Session

	// Err, when set, is returned by every method.
	Err error
	// Calls counts store round trips.
	Calls int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]*model.User),
		byEmail:  make(map[string]int64),
		sessions: make(map[string]*model.Session),
	}
}

func (m *MemoryStore) begin() error {
	m.Calls++
	return m.Err
}

// EmailExists implements the store contract.
func (m *MemoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return false, err
	}
	_, ok := m.byEmail[email]
	return ok, nil
}

// CreateUserWithSession implements the store contract.
func (m *MemoryStore) CreateUserWithSession(_ context.Context, user *model.User, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}

	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	m.users[user.ID] = &stored
	m.byEmail[user.Email] = user.ID

	session.UserID = user.ID
	s := *session
	m.sessions[session.Token] = &s
	return nil
}

// GetUserByEmail implements the store contract.
func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := *m.users[id]
	return &u, nil
}

// CreateSession implements the store contract.
func (m *MemoryStore) CreateSession(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	s := *session
	m.sessions[session.Token] = &s
	return nil
}

// GetSessionUser implements the store contract.
func (m *MemoryStore) GetSessionUser(_ context.Context, token string, now time.Time) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	s, ok := m.sessions[token]
	if !ok || s.IsExpired(now) {
		return nil, repository.ErrSessionNotFound
	}
	u, ok := m.users[s.UserID]
	if !ok || !u.IsActive {
		return nil, repository.ErrSessionNotFound
	}
	cp := *u
	return &cp, nil
}

// DeleteSession implements the store contract.
func (m *MemoryStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	delete(m.sessions, token)
	return nil
}

// DeleteExpiredSessions implements the store contract.
func (m *MemoryStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return 0, err
	}
	var n int64
	for token, s := range m.sessions {
		if s.IsExpired(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

// UserCount returns the number of stored users.
func (m *MemoryStore) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// SessionCount returns the number of stored sessions, expired ones included.
func (m *MemoryStore) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Session returns a copy of the session stored under token.
func (m *MemoryStore) Session(token string) (*model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

// PutUser stores user as-is and returns its assigned ID.
func (m *MemoryStore) PutUser(user *model.User) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	u := *user
	m.users[user.ID] = &u
	m.byEmail[user.Email] = user.ID
	return user.ID
}

// PutSession stores session as-is.
func (m *MemoryStore) PutSession(session *model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *session
	m.sessions[session.Token] = &s
}
