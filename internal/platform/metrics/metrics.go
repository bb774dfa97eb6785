package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	IdentityResolutions  *prometheus.CounterVec
	ResolveDuration      prometheus.Histogram
	Submissions          *prometheus.CounterVec
	ReviewDecisions      *prometheus.CounterVec
	SoftLockOutcomes     *prometheus.CounterVec
	StaleVersionRejected prometheus.Counter
	AuditWriteFailures   prometheus.Counter
	CoreSystemCalls      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		IdentityResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_identity_resolutions_total",
			Help: "Identity resolutions by outcome",
		}, []string{"outcome"}),
		ResolveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyc_identity_resolve_duration_seconds",
			Help:    "Latency of identity resolution including core system calls",
			Buckets: prometheus.DefBuckets,
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_submissions_total",
			Help: "Customer submissions by actor type",
		}, []string{"actor_type"}),
		ReviewDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_review_decisions_total",
			Help: "Applied review decisions by target status",
		}, []string{"status"}),
		SoftLockOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_soft_lock_outcomes_total",
			Help: "Soft lock acquire outcomes (acquired, reentered, stolen, denied, bypassed)",
		}, []string{"outcome"}),
		StaleVersionRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "kyc_stale_version_rejections_total",
			Help: "Saves rejected because the presented version was stale",
		}),
		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "kyc_audit_write_failures_total",
			Help: "Change log entries that could not be persisted",
		}),
		CoreSystemCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_core_system_calls_total",
			Help: "Calls to the policy registry by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
	}
}

func (m *Metrics) IncrementResolution(outcome string) {
	if m != nil {
		m.IdentityResolutions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveResolveDuration(seconds float64) {
	if m != nil {
		m.ResolveDuration.Observe(seconds)
	}
}

func (m *Metrics) IncrementSubmission(actorType string) {
	if m != nil {
		m.Submissions.WithLabelValues(actorType).Inc()
	}
}

func (m *Metrics) IncrementDecision(status string) {
	if m != nil {
		m.ReviewDecisions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementSoftLock(outcome string) {
	if m != nil {
		m.SoftLockOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementStaleVersion() {
	if m != nil {
		m.StaleVersionRejected.Inc()
	}
}

func (m *Metrics) IncrementAuditWriteFailure() {
	if m != nil {
		m.AuditWriteFailures.Inc()
	}
}

func (m *Metrics) IncrementCoreSystemCall(endpoint, outcome string) {
	if m != nil {
		m.CoreSystemCalls.WithLabelValues(endpoint, outcome).Inc()
	}
}
