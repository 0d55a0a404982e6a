package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollector_ExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.IncSignup(SignupCreated)
	c.IncSignup(SignupConflict)
	c.IncLogin(LoginUnauthorized)
	c.IncLogout()
	c.IncSessionCheck(SessionAnonymous)
	c.AddSessionsReaped(3)
	c.AddSessionsReaped(0)
	c.ObserveHTTPRequest(http.MethodPost, "/api/auth/signup", http.StatusCreated, 15*time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	out := string(body)

	want := []string{
		`parkflow_auth_signups_total{outcome="created"} 1`,
		`parkflow_auth_signups_total{outcome="conflict"} 1`,
		`parkflow_auth_logins_total{outcome="unauthorized"} 1`,
		`parkflow_auth_logouts_total 1`,
		`parkflow_auth_session_checks_total{outcome="anonymous"} 1`,
		`parkflow_auth_sessions_reaped_total 3`,
		`parkflow_http_requests_total{method="POST",route="/api/auth/signup",status_code="201"} 1`,
		`parkflow_http_request_duration_seconds_count{method="POST",route="/api/auth/signup"} 1`,
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("scrape output missing %q", line)
		}
	}
}

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncSignup(SignupCreated)
	m.IncSignup(SignupCreated)
	m.IncLogin(LoginSuccess)
	m.IncLogout()
	m.IncSessionCheck(SessionAuthenticated)
	m.AddSessionsReaped(5)
	m.ObserveHTTPRequest(http.MethodGet, "/api/auth/me", http.StatusOK, time.Millisecond)

	snap := m.Snapshot()
	if snap.Signups[SignupCreated] != 2 {
		t.Errorf("Signups[created] = %d, want 2", snap.Signups[SignupCreated])
	}
	if snap.Logins[LoginSuccess] != 1 || snap.Logouts != 1 {
		t.Errorf("unexpected login/logout counts: %+v", snap)
	}
	if snap.SessionChecks[SessionAuthenticated] != 1 {
		t.Errorf("SessionChecks[authenticated] = %d, want 1", snap.SessionChecks[SessionAuthenticated])
	}
	if snap.SessionsReaped != 5 || snap.HTTPRequests != 1 {
		t.Errorf("unexpected reaped/http counts: %+v", snap)
	}

	// Snapshot must be a copy.
	snap.Signups[SignupCreated] = 100
	if m.Snapshot().Signups[SignupCreated] != 2 {
		t.Error("mutating a snapshot changed the recorder")
	}
}

func TestNoop_SatisfiesRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncSignup(SignupError)
	r.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, 0)
}
