// Package metrics holds the Prometheus collectors for credential outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeExpired  = "expired"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics contains the identity service collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	LoginsTotal          *prometheus.CounterVec
	TokensIssuedTotal    *prometheus.CounterVec
	TokensRejectedTotal  *prometheus.CounterVec
	ResetsTotal          *prometheus.CounterVec
	PasswordHashDuration prometheus.Histogram
	HousekeepingDeleted  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passage_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		TokensIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passage_tokens_issued_total",
				Help: "Tokens issued by purpose",
			},
			[]string{"purpose"},
		),
		TokensRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passage_tokens_rejected_total",
				Help: "Tokens rejected at verification by purpose and reason",
			},
			[]string{"purpose", "reason"},
		),
		ResetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "passage_password_resets_total",
				Help: "Password reset steps by stage (request, confirm) and outcome",
			},
			[]string{"stage", "outcome"},
		),
		PasswordHashDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "passage_password_hash_duration_seconds",
				Help:    "Time spent hashing or verifying a password",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		HousekeepingDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "passage_housekeeping_deleted_total",
				Help: "Expired used-reset-token records removed by housekeeping",
			},
		),
	}

	reg.MustRegister(
		m.LoginsTotal,
		m.TokensIssuedTotal,
		m.TokensRejectedTotal,
		m.ResetsTotal,
		m.PasswordHashDuration,
		m.HousekeepingDeleted,
	)
	return m
}

// NewRegistry returns a registry with the Go and process collectors plus
// the identity collectors.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, New(reg)
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TokenIssued(purpose string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(purpose).Inc()
}

func (m *Metrics) TokenRejected(purpose, reason string) {
	if m == nil {
		return
	}
	m.TokensRejectedTotal.WithLabelValues(purpose, reason).Inc()
}

func (m *Metrics) Reset(stage, outcome string) {
	if m == nil {
		return
	}
	m.ResetsTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveHash records the time since start.
func (m *Metrics) ObserveHash(start time.Time) {
	if m == nil {
		return
	}
	m.PasswordHashDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.HousekeepingDeleted.Add(float64(n))
}
