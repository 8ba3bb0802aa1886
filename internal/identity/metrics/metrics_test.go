package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/passage/internal/identity/metrics"
)

func TestMetrics_Registered(t *testing.T) {
	reg, m := metrics.NewRegistry()
	m.Login(metrics.OutcomeSuccess)
	m.TokenIssued("session")
	m.TokenRejected("reset", metrics.OutcomeExpired)
	m.Reset("request", metrics.OutcomeSuccess)
	m.ObserveHash(time.Now())
	m.Purged(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	registered := make(map[string]bool)
	for _, family := range families {
		registered[family.GetName()] = true
	}

	for _, name := range []string{
		"passage_logins_total",
		"passage_tokens_issued_total",
		"passage_tokens_rejected_total",
		"passage_password_resets_total",
		"passage_password_hash_duration_seconds",
		"passage_housekeeping_deleted_total",
		"go_goroutines",
	} {
		assert.True(t, registered[name], "metric %q should be registered", name)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Login(metrics.OutcomeFailure)
	m.Login(metrics.OutcomeFailure)
	m.Login(metrics.OutcomeSuccess)
	m.Purged(0)
	m.Purged(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(metrics.OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HousekeepingDeleted))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Login(metrics.OutcomeSuccess)
		m.TokenIssued("session")
		m.TokenRejected("session", metrics.OutcomeInvalid)
		m.Reset("confirm", metrics.OutcomeError)
		m.ObserveHash(time.Now())
		m.Purged(1)
	})
}
