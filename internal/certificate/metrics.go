package certificate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for certificate rendering.
type Metrics struct {
	RenderedTotal  prometheus.Counter
	RenderDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		RenderedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_certificates_rendered_total",
			Help: "Total number of certificates rendered",
		}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "civreg_certificate_render_duration_seconds",
			Help:    "Duration of certificate rendering",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRendered records a successful render.
func (m *Metrics) IncrementRendered() {
	m.RenderedTotal.Inc()
}

// ObserveRender records the duration of a render.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRender(start time.Time) {
	m.RenderDuration.Observe(time.Since(start).Seconds())
}
