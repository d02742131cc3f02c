package measurementstorage

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/storagetest"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func record(athleteID int64, day string, weight float64) assessment.Anthropometry {
	date, _ := time.Parse(assessment.DateLayout, day)
	return assessment.Anthropometry{
		AthleteID:      athleteID,
		RecordDate:     date,
		WeightKg:       weight,
		HeightM:        1.8,
		SittingHeightM: 0.95,
		ArmSpanM:       1.85,
	}
}

func TestPostgresStorage(t *testing.T) {
	db := storagetest.Open(t)
	athleteID := storagetest.Athlete(t, db, "Ana", "Ruiz", "S-001")
	ctx := context.Background()

	s := NewPostgresStorage(db)
	for i, day := range []string{"2024-05-01", "2024-06-01"} {
		m := measurement.New(day, record(athleteID, day, 80+float64(i)), "coach-1")
		require.NoError(t, s.Add(ctx, m))
	}
	assert.Len(t, s.CollectEvents(), 2)

	exists, err := s.ExistsForDate(ctx, athleteID, time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsForDate(ctx, athleteID, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, exists)

	m, err := s.GetByID(ctx, "2024-05-01")
	require.NoError(t, err)
	a := m.Anthropometry()
	a.WeightKg = 77.5
	a.Notes = "after break"
	require.NoError(t, m.Update(a))
	require.NoError(t, s.Persist(ctx, m))
	assert.Len(t, s.CollectEvents(), 1)

	list, err := s.ListByAthlete(ctx, athleteID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-06-01", list[0].MeasurementID)
	assert.Equal(t, 77.5, list[1].WeightKg)
	assert.Equal(t, "after break", list[1].Notes)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, measurement.ErrMeasurementNotFound)
}
