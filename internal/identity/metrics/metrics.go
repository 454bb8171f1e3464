package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the identity vertical.
type Metrics struct {
	IdentitiesRecorded    prometheus.Counter
	SuperusersProvisioned prometheus.Counter
}

// New creates and registers all identity metrics.
func New() *Metrics {
	return &Metrics{
		IdentitiesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_identities_recorded_total",
			Help: "Total number of identities recorded in the system",
		}),
		SuperusersProvisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civreg_superusers_provisioned_total",
			Help: "Total number of superuser provisioning operations",
		}),
	}
}

// IncrementRecorded increments the recorded-identities counter by 1.
func (m *Metrics) IncrementRecorded() {
	m.IdentitiesRecorded.Inc()
}

// IncrementProvisioned increments the provisioned-superusers counter by 1.
func (m *Metrics) IncrementProvisioned() {
	m.SuperusersProvisioned.Inc()
}
