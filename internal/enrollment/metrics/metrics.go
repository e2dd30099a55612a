package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for enrollment operations.
type Metrics struct {
	Registered        prometheus.Counter
	Rejected          *prometheus.CounterVec
	Transitions       *prometheus.CounterVec
	CollaboratorError *prometheus.CounterVec
	AdmissionDuration prometheus.Histogram
}

// New creates and registers the enrollment metrics.
func New() *Metrics {
	return &Metrics{
		Registered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "registrar_enrollments_registered_total",
			Help: "Total number of admitted enrollments",
		}),
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_enrollments_rejected_total",
			Help: "Registrations rejected by the admission protocol, by reason",
		}, []string{"reason"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_enrollment_transitions_total",
			Help: "Successful lifecycle transitions, by target status",
		}, []string{"status"}),
		CollaboratorError: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_collaborator_errors_total",
			Help: "Failed or timed out collaborator lookups, by collaborator",
		}, []string{"collaborator"}),
		AdmissionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "registrar_admission_duration_seconds",
			Help:    "Time spent inside the offering-scoped admission unit of work",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncRegistered() {
	if m != nil {
		m.Registered.Inc()
	}
}

func (m *Metrics) IncRejected(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncCollaboratorError(collaborator string) {
	if m != nil {
		m.CollaboratorError.WithLabelValues(collaborator).Inc()
	}
}

func (m *Metrics) ObserveAdmission(seconds float64) {
	if m != nil {
		m.AdmissionDuration.Observe(seconds)
	}
}
