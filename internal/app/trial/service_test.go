package trialservice

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/storagetest"
	trialstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/trials"
	"github.com/burenotti/hoops_backend/internal/adapter/telemetry"
	"github.com/burenotti/hoops_backend/internal/app/form"
	"github.com/burenotti/hoops_backend/internal/app/messagebus"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"sync"
	"testing"
	"time"
)

type fixture struct {
	svc      *Service
	uow      *unitofwork.UnitOfWork[*AtomicContext]
	bus      *messagebus.MessageBus
	enrolled int64
	inactive int64
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := storagetest.Open(t)
	enrolled := storagetest.Athlete(t, db, "Luis", "Mora", "S-100")
	inactive := storagetest.Athlete(t, db, "Eva", "Soto", "S-101")
	storagetest.Enroll(t, db, enrolled, true)
	storagetest.Enroll(t, db, inactive, false)

	bus := messagebus.New(nil)
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := New(assessment.DefaultConstraints(), time.UTC, telemetry.Nop{}, nil).
		WithClock(assessment.ClockFunc(func() time.Time { return today }))

	return &fixture{
		svc:      svc,
		uow:      unitofwork.New(db, NewAtomicContext, bus, nil),
		bus:      bus,
		enrolled: enrolled,
		inactive: inactive,
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

	tr, err := f.svc.Create(ctx, f.uow, "coach-1", map[string]any{
		"athleteId": map[string]any{"id": f.enrolled},
		"type":      "speed",
		"value":     "12,5",
		"notes":     strings.Repeat("x", 250),
	})
	require.NoError(t, err)
	assert.Equal(t, assessment.TrialSpeed, tr.Type)
	assert.Equal(t, 12.5, tr.Result)
	assert.True(t, tr.Active)
	assert.Len(t, tr.Notes, 200)

	stored, err := f.svc.Get(ctx, f.uow, tr.TrialID)
	require.NoError(t, err)
	assert.Equal(t, tr.Spec(), stored.Spec())
}

func TestService_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload func(f *fixture) map[string]any
		field   string
		code    string
	}{
		{
			name: "athlete without active enrollment",
			payload: func(f *fixture) map[string]any {
				return map[string]any{"athlete_id": f.inactive, "trial_type": "AGILITY", "result": 10}
			},
			field: assessment.FieldAthleteID,
			code:  assessment.CodeNotEligible,
		},
		{
			name: "result above trial maximum",
			payload: func(f *fixture) map[string]any {
				return map[string]any{"athlete_id": f.enrolled, "trial_type": "SPEED", "result": 20}
			},
			field: assessment.FieldResult,
			code:  assessment.CodeTrialMax,
		},
		{
			name: "misspelled trial type",
			payload: func(f *fixture) map[string]any {
				return map[string]any{"athlete_id": f.enrolled, "trial_type": "agilty", "result": 10}
			},
			field: assessment.FieldTrialType,
			code:  assessment.CodeTrialTypeSuggest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			_, err := f.svc.Create(ctx, f.uow, "coach-1", tt.payload(f))
			r := rejection(t, err)
			require.True(t, r.Errors.Has(tt.field), "errors: %v", r.Errors.Messages())
			assert.Equal(t, tt.code, r.Errors[tt.field].Code)

			list, err := f.svc.ListByAthlete(ctx, f.uow, f.enrolled, trialstorage.Filter{}, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.uow, "coach-1", map[string]any{
		"athlete_id": f.enrolled,
		"trial_type": "STRENGTH",
		"result":     210,
	})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.uow, tr.TrialID, map[string]any{
		"trial_type": "strength",
		"result":     "225.5",
		"notes":      "personal best",
	})
	require.NoError(t, err)
	assert.Equal(t, 225.5, updated.Result)
	assert.Equal(t, "personal best", updated.Notes)

	_, err = f.svc.Update(ctx, f.uow, tr.TrialID, map[string]any{"trial_type": "SPEED"})
	r := rejection(t, err)
	assert.Equal(t, []string{assessment.FieldTrialType}, r.Errors.Fields())

	_, err = f.svc.Update(ctx, f.uow, tr.TrialID, map[string]any{"result": 400})
	r = rejection(t, err)
	assert.Equal(t, assessment.CodeTrialMax, r.Errors[assessment.FieldResult].Code)

	stored, err := f.svc.Get(ctx, f.uow, tr.TrialID)
	require.NoError(t, err)
	assert.Equal(t, 225.5, stored.Result)
}

func TestService_SetActive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var mu sync.Mutex
	var toggles []trial.ActiveChangedEvent
	f.bus.Register(trial.EventActiveSet, func(e domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		toggles = append(toggles, e.(trial.ActiveChangedEvent))
		return nil
	})

	var ids []string
	for _, result := range []int{8, 9} {
		tr, err := f.svc.Create(ctx, f.uow, "coach-1", map[string]any{
			"athlete_id": f.enrolled,
			"trial_type": "AGILITY",
			"result":     result,
		})
		require.NoError(t, err)
		ids = append(ids, tr.TrialID)
	}

	tr, err := f.svc.SetActive(ctx, f.uow, ids[0], false)
	require.NoError(t, err)
	assert.False(t, tr.Active)

	_, err = f.svc.SetActive(ctx, f.uow, ids[0], false)
	require.NoError(t, err)

	active, err := f.svc.ListByAthlete(ctx, f.uow, f.enrolled, trialstorage.Filter{
		Type:       assessment.TrialAgility,
		ActiveOnly: true,
	}, 0, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, ids[1], active[0].TrialID)

	_, err = f.svc.SetActive(ctx, f.uow, "missing", true)
	assert.ErrorIs(t, err, trial.ErrTrialNotFound)

	f.bus.Close()
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, toggles, 1)
	assert.Equal(t, ids[0], toggles[0].TrialID)
}

func TestService_Validate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	report, err := f.svc.Validate(ctx, f.uow, map[string]any{
		"athlete_id": f.enrolled,
		"trial_type": "speed",
		"result":     "14.9",
		"active":     "inactive",
	}, assessment.ModeCreate)
	require.NoError(t, err)
	assert.True(t, report.Valid(), "errors: %v", report.Errors.Messages())
	assert.Equal(t, "SPEED", report.Record.TrialType)
	assert.Equal(t, "false", report.Record.Active)

	report, err = f.svc.Validate(ctx, f.uow, map[string]any{"result": -1}, assessment.ModeCreate)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{assessment.FieldAthleteID, assessment.FieldTrialType, assessment.FieldResult},
		report.Errors.Fields())
}
