package measurement

import (
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func anthropometry() assessment.Anthropometry {
	return assessment.Anthropometry{
		AthleteID:      7,
		RecordDate:     time.Date(2024, 6, 1, 18, 45, 0, 0, time.FixedZone("ART", -3*3600)),
		WeightKg:       80,
		HeightM:        1.8,
		SittingHeightM: 0.95,
		ArmSpanM:       1.85,
		Notes:          "IMC 24.7 Normal",
	}
}

func TestNew(t *testing.T) {
	m := New("m-1", anthropometry(), "coach-1")

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), m.RecordDate)
	events := m.PopEvents()
	require.Len(t, events, 1)
	recorded, ok := events[0].(RecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "m-1", recorded.MeasurementID)
	assert.Equal(t, int64(7), recorded.AthleteID)
	assert.Empty(t, m.PopEvents())
}

func TestMeasurement_Update(t *testing.T) {
	m := New("m-1", anthropometry(), "coach-1")
	m.PopEvents()

	t.Run("unchanged values emit nothing", func(t *testing.T) {
		require.NoError(t, m.Update(anthropometry()))
		assert.Empty(t, m.PopEvents())
	})

	t.Run("new weight", func(t *testing.T) {
		a := anthropometry()
		a.WeightKg = 95
		require.NoError(t, m.Update(a))
		assert.Equal(t, 95.0, m.WeightKg)
		events := m.PopEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventUpdated, events[0].Type())
	})

	t.Run("fixed fields", func(t *testing.T) {
		a := anthropometry()
		a.AthleteID = 8
		assert.ErrorIs(t, m.Update(a), ErrImmutableChanged)

		a = anthropometry()
		a.RecordDate = a.RecordDate.AddDate(0, 0, 1)
		assert.ErrorIs(t, m.Update(a), ErrImmutableChanged)
	})
}

func TestMeasurement_Metrics(t *testing.T) {
	m := New("m-1", anthropometry(), "coach-1")
	metrics := m.Metrics(assessment.DefaultConstraints())
	assert.InDelta(t, 24.69, metrics.BMI, 0.01)
	assert.Equal(t, assessment.ClassNormal, metrics.BMIClass.Code)
}

func TestErrDuplicateRecord(t *testing.T) {
	assert.ErrorIs(t, ErrDuplicateRecord, ErrMeasurementExists)
}
