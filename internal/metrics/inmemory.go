package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups        map[string]uint64
	Logins         map[string]uint64
	Logouts        uint64
	SessionChecks  map[string]uint64
	SessionsReaped int64
	HTTPRequests   uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		snap: Snapshot{
			Signups:       make(map[string]uint64),
			Logins:        make(map[string]uint64),
			SessionChecks: make(map[string]uint64),
		},
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.snap
	out.Signups = copyCounts(m.snap.Signups)
	out.Logins = copyCounts(m.snap.Logins)
	out.SessionChecks = copyCounts(m.snap.SessionChecks)
	return out
}

// IncSignup counts a signup attempt by outcome.
func (m *InMemoryRecorder) IncSignup(outcome string) {
	m.mu.Lock()
	m.snap.Signups[outcome]++
	m.mu.Unlock()
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.snap.Logins[outcome]++
	m.mu.Unlock()
}

// IncLogout counts a logout.
func (m *InMemoryRecorder) IncLogout() {
	m.mu.Lock()
	m.snap.Logouts++
	m.mu.Unlock()
}

// IncSessionCheck counts a session check by outcome.
func (m *InMemoryRecorder) IncSessionCheck(outcome string) {
	m.mu.Lock()
	m.snap.SessionChecks[outcome]++
	m.mu.Unlock()
}

// AddSessionsReaped adds to the reaped sessions total.
func (m *InMemoryRecorder) AddSessionsReaped(n int64) {
	m.mu.Lock()
	m.snap.SessionsReaped += n
	m.mu.Unlock()
}

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.mu.Lock()
	m.snap.HTTPRequests++
	m.mu.Unlock()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
