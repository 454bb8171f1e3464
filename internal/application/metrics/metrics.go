package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application lifecycle.
type Metrics struct {
	SubmissionsTotal prometheus.Counter
	ApprovedTotal    prometheus.Counter
	RejectedTotal    prometheus.Counter
	ReviewDuration   prometheus.Histogram
}

// New creates a Metrics instance with all lifecycle metrics registered.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_applications_submitted_total",
			Help: "Total number of application submissions, including resubmissions",
		}),
		ApprovedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_applications_approved_total",
			Help: "Total number of approval decisions",
		}),
		RejectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_applications_rejected_total",
			Help: "Total number of rejection decisions",
		}),
		ReviewDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "civreg_review_duration_seconds",
			Help:    "Duration of review transitions including artifact generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementSubmissions records a successful submission.
func (m *Metrics) IncrementSubmissions() {
	m.SubmissionsTotal.Inc()
}

// IncrementDecision records a review outcome.
func (m *Metrics) IncrementDecision(approved bool) {
	if approved {
		m.ApprovedTotal.Inc()
	} else {
		m.RejectedTotal.Inc()
	}
}

// ObserveReview records the duration of a review transition.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReview(start time.Time) {
	m.ReviewDuration.Observe(time.Since(start).Seconds())
}
