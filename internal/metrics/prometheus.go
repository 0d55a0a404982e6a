package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	signups        *prometheus.CounterVec
	logins         *prometheus.CounterVec
	logouts        prometheus.Counter
	sessionChecks  *prometheus.CounterVec
	sessionsReaped prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkflow_auth_signups_total",
			Help: "Signup attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkflow_auth_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parkflow_auth_logouts_total",
			Help: "Logout requests.",
		}),
		sessionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkflow_auth_session_checks_total",
			Help: "Session checks by outcome.",
		}, []string{"outcome"}),
		sessionsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parkflow_auth_sessions_reaped_total",
			Help: "Expired sessions deleted by the reaper.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parkflow_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parkflow_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.logouts,
		c.sessionChecks,
		c.sessionsReaped,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

// IncSignup records a signup outcome.
func (c *Collector) IncSignup(outcome string) {
	c.signups.WithLabelValues(outcome).Inc()
}

// IncLogin records a login outcome.
func (c *Collector) IncLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// IncLogout records a logout.
func (c *Collector) IncLogout() {
	c.logouts.Inc()
}

// IncSessionCheck records a session check outcome.
func (c *Collector) IncSessionCheck(outcome string) {
	c.sessionChecks.WithLabelValues(outcome).Inc()
}

// AddSessionsReaped records reaped sessions.
func (c *Collector) AddSessionsReaped(n int64) {
	if n > 0 {
		c.sessionsReaped.Add(float64(n))
	}
}

// ObserveHTTPRequest records one served request.
func (c *Collector) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
