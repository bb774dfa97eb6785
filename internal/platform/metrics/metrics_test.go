package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementSoftLock("stolen")
	m.IncrementSoftLock("stolen")
	m.IncrementStaleVersion()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SoftLockOutcomes.WithLabelValues("stolen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleVersionRejected))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementDecision("VERIFIED")
		m.IncrementAuditWriteFailure()
		m.ObserveResolveDuration(0.1)
	})
}
