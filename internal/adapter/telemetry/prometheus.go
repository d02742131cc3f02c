package telemetry

import (
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Submissions counts assessment submits and the fields that made them fail.
type Submissions struct {
	total       *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
}

func NewSubmissions(reg prometheus.Registerer) *Submissions {
	s := &Submissions{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hoops",
			Name:      "submissions_total",
			Help:      "Assessment submissions by record kind and outcome.",
		}, []string{"kind", "outcome"}),
		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hoops",
			Name:      "field_errors_total",
			Help:      "Field errors reported back on rejected submissions.",
		}, []string{"kind", "field"}),
	}
	if reg != nil {
		reg.MustRegister(s.total, s.fieldErrors)
	}
	return s
}

func (s *Submissions) Submission(kind, outcome string) {
	s.total.WithLabelValues(kind, outcome).Inc()
}

func (s *Submissions) FieldErrors(kind string, errs assessment.Errors) {
	for _, field := range errs.Fields() {
		s.fieldErrors.WithLabelValues(kind, field).Inc()
	}
}

// Nop discards everything. Services fall back to it when no recorder is
// configured.
type Nop struct{}

func (Nop) Submission(string, string) {}

func (Nop) FieldErrors(string, assessment.Errors) {}
