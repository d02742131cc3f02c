package measurementservice

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/storagetest"
	"github.com/burenotti/hoops_backend/internal/app/form"
	"github.com/burenotti/hoops_backend/internal/app/messagebus"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu          sync.Mutex
	submissions map[string]int
	fields      []string
}

func (r *recorder) Submission(_, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submissions == nil {
		r.submissions = make(map[string]int)
	}
	r.submissions[outcome]++
}

func (r *recorder) FieldErrors(_ string, errs assessment.Errors) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields = append(r.fields, errs.Fields()...)
}

type fixture struct {
	svc       *Service
	uow       *unitofwork.UnitOfWork[*AtomicContext]
	bus       *messagebus.MessageBus
	rec       *recorder
	athleteID int64
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := storagetest.Open(t)
	athleteID := storagetest.Athlete(t, db, "Ana", "Ruiz", "S-001")

	bus := messagebus.New(nil)
	rec := &recorder{}
	today := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	svc := New(assessment.DefaultConstraints(), time.UTC, rec, nil).
		WithClock(assessment.ClockFunc(func() time.Time { return today }))

	return &fixture{
		svc:       svc,
		uow:       unitofwork.New(db, NewAtomicContext, bus, nil),
		bus:       bus,
		rec:       rec,
		athleteID: athleteID,
	}
}

func (f *fixture) payload() map[string]any {
	return map[string]any{
		"athlete_id":       float64(f.athleteID),
		"record_date":      "2024-06-01",
		"weight_kg":        80.0,
		"height_m":         "1.80",
		"sitting_height_m": "0,95",
		"arm_span_m":       1.85,
	}
}

func rejection(t *testing.T, err error) *form.Rejection {
	t.Helper()
	var r *form.Rejection
	require.ErrorAs(t, err, &r)
	return r
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var mu sync.Mutex
	var recorded []domain.Event
	f.bus.Register(measurement.EventRecorded, func(e domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, e)
		return nil
	})

	m, err := f.svc.Create(ctx, f.uow, "coach-1", f.payload())
	require.NoError(t, err)
	assert.Equal(t, f.athleteID, m.AthleteID)
	assert.Equal(t, 0.95, m.SittingHeightM)
	assert.Contains(t, m.Notes, "Normal")
	assert.Contains(t, m.Notes, "Mesocormic")

	stored, err := f.svc.Get(ctx, f.uow, m.MeasurementID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", stored.RecordDate.Format(assessment.DateLayout))
	assert.Equal(t, m.Notes, stored.Notes)

	f.bus.Close()
	mu.Lock()
	assert.Len(t, recorded, 1)
	mu.Unlock()
	assert.Equal(t, 1, f.rec.submissions["accepted"])
}

func TestService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate date", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Create(ctx, f.uow, "coach-1", f.payload())
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.uow, "coach-1", f.payload())
		r := rejection(t, err)
		require.True(t, r.Errors.Has(assessment.FieldRecordDate))
		assert.Equal(t, assessment.KindServerField, r.Errors[assessment.FieldRecordDate].Kind)
		assert.Equal(t, msgDuplicate, r.Errors[assessment.FieldRecordDate].Message)
	})

	t.Run("unknown athlete", func(t *testing.T) {
		f := setup(t)
		p := f.payload()
		p["athlete_id"] = 9999

		_, err := f.svc.Create(ctx, f.uow, "coach-1", p)
		r := rejection(t, err)
		assert.Equal(t, []string{assessment.FieldAthleteID}, r.Errors.Fields())
		assert.Equal(t, msgUnknownAthlete, r.Errors[assessment.FieldAthleteID].Message)
	})

	t.Run("local validation", func(t *testing.T) {
		f := setup(t)
		p := f.payload()
		p["weight_kg"] = 500
		p["record_date"] = "2024-07-01"

		_, err := f.svc.Create(ctx, f.uow, "coach-1", p)
		r := rejection(t, err)
		assert.Equal(t, assessment.KindRange, r.Errors[assessment.FieldWeightKg].Kind)
		assert.Equal(t, assessment.KindRange, r.Errors[assessment.FieldRecordDate].Kind)

		list, err := f.svc.ListByAthlete(ctx, f.uow, f.athleteID, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.ElementsMatch(t, []string{assessment.FieldRecordDate, assessment.FieldWeightKg}, f.rec.fields)
	})
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.uow, "coach-1", f.payload())
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.uow, m.MeasurementID, map[string]any{
		"weight": 95,
		// repeating the fixed fields is fine as long as they do not change
		"athlete_id":  f.athleteID,
		"record_date": "2024-06-01T08:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 95.0, updated.WeightKg)
	assert.Contains(t, updated.Notes, "Overweight")

	stored, err := f.svc.Get(ctx, f.uow, m.MeasurementID)
	require.NoError(t, err)
	assert.Equal(t, 95.0, stored.WeightKg)
	assert.Equal(t, updated.Notes, stored.Notes)

	t.Run("pinned notes survive", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.uow, m.MeasurementID, map[string]any{"notes": "left knee sore"})
		require.NoError(t, err)

		got, err := f.svc.Update(ctx, f.uow, m.MeasurementID, map[string]any{"weight_kg": 90})
		require.NoError(t, err)
		assert.Equal(t, "left knee sore", got.Notes)
	})

	t.Run("fixed fields", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.uow, m.MeasurementID, map[string]any{"record_date": "2024-06-02"})
		r := rejection(t, err)
		assert.Equal(t, msgImmutable, r.Errors[assessment.FieldRecordDate].Message)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.uow, "missing", map[string]any{"weight_kg": 90})
		assert.ErrorIs(t, err, measurement.ErrMeasurementNotFound)
	})
}

func TestService_ListByAthlete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, date := range []string{"2024-05-01", "2024-06-01", "2024-03-01"} {
		p := f.payload()
		p["record_date"] = date
		_, err := f.svc.Create(ctx, f.uow, "coach-1", p)
		require.NoError(t, err)
	}

	list, err := f.svc.ListByAthlete(ctx, f.uow, f.athleteID, 2, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-06-01", list[0].RecordDate.Format(assessment.DateLayout))
	assert.Equal(t, "2024-05-01", list[1].RecordDate.Format(assessment.DateLayout))

	_, err = f.svc.ListByAthlete(ctx, f.uow, 4242, 0, 0)
	assert.ErrorIs(t, err, profile.ErrAthleteNotFound)
}

func TestService_Validate(t *testing.T) {
	f := setup(t)

	report := f.svc.Validate(map[string]any{
		"weight":           80,
		"height":           1.8,
		"sitting_height_m": 1.9,
	}, assessment.ModeCreate)

	assert.False(t, report.Valid())
	assert.Equal(t, assessment.KindRequired, report.Errors[assessment.FieldAthleteID].Kind)
	assert.Equal(t, assessment.KindRatio, report.Errors[assessment.FieldSittingHeightM].Kind)
	assert.InDelta(t, 24.69, report.Metrics.BMI, 0.01)
	assert.Equal(t, assessment.ClassNormal, report.Metrics.BMIClass.Code)
}
