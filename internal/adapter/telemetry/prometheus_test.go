package telemetry

import (
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestSubmissions(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewSubmissions(reg)

	s.Submission("measurement", OutcomeAccepted)
	s.Submission("measurement", OutcomeAccepted)
	s.Submission("trial", OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(s.total.WithLabelValues("measurement", OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.total.WithLabelValues("trial", OutcomeRejected)))

	s.FieldErrors("trial", assessment.Errors{
		assessment.FieldResult:    assessment.ServerError(assessment.FieldResult, "too high"),
		assessment.FieldAthleteID: assessment.ServerError(assessment.FieldAthleteID, "unknown"),
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(s.fieldErrors.WithLabelValues("trial", assessment.FieldResult)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"hoops_submissions_total", "hoops_field_errors_total"}, names)
}

func TestNopDoesNothing(t *testing.T) {
	var n Nop
	n.Submission("measurement", OutcomeError)
	n.FieldErrors("measurement", nil)
}
