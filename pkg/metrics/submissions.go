package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pond_miniapp"

// Outcome labels of a submission attempt.
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid"
	OutcomeRejected   = "rejected"
	OutcomeNetwork    = "network_error"
	OutcomeInProgress = "in_progress"
)

type SubmissionMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	catalog  *prometheus.CounterVec
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	factory := promauto.With(reg)
	return &SubmissionMetrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form submissions by variant and outcome.",
		}, []string{"variant", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Backend round trip of accepted-for-sending submissions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"variant"}),
		catalog: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog fetches from the backend by kind and result.",
		}, []string{"kind", "result"}),
	}
}

func (m *SubmissionMetrics) ObserveSubmission(variant, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(variant, outcome).Inc()
	if took > 0 {
		m.duration.WithLabelValues(variant).Observe(took.Seconds())
	}
}

func (m *SubmissionMetrics) ObserveCatalogLoad(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalog.WithLabelValues(kind, result).Inc()
}
