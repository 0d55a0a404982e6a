// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Signup outcomes.
const (
	SignupCreated  = "created"
	SignupInvalid  = "invalid"
	SignupConflict = "conflict"
	SignupError    = "error"
)

// Login outcomes.
const (
	LoginSuccess      = "success"
	LoginInvalid      = "invalid"
	LoginUnauthorized = "unauthorized"
	LoginError        = "error"
)

// Session check outcomes.
const (
	SessionAuthenticated = "authenticated"
	SessionAnonymous     = "anonymous"
	SessionError         = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Session lifecycle metrics
	IncSignup(outcome string)
	IncLogin(outcome string)
	IncLogout()
	IncSessionCheck(outcome string)
	AddSessionsReaped(n int64)

	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}
