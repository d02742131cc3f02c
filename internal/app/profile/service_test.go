package profileapp

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/storagetest"
	"github.com/burenotti/hoops_backend/internal/app/messagebus"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestService_Profiles(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	uow := unitofwork.New(db, NewAtomicContext, messagebus.New(nil), nil)
	svc := New(nil)

	coachID := storagetest.User(t, db, "u-coach", "coach@club.test")
	liaisonID := storagetest.User(t, db, "u-liaison", "liaison@club.test")

	coach, err := svc.CreateCoach(ctx, coachID, "Pat", "Riley", 12, "former point guard", uow)
	require.NoError(t, err)
	assert.Equal(t, profile.TypeCoach, coach.Type())

	_, err = svc.CreateLiaison(ctx, coachID, "Pat", "Riley", "x-1", uow)
	assert.ErrorIs(t, err, profile.ErrProfileExists)

	liaison, err := svc.CreateLiaison(ctx, liaisonID, "Ines", "Vega", " ab-12 ", uow)
	require.NoError(t, err)
	assert.Equal(t, "AB-12", liaison.StudentCode)

	p, err := svc.GetProfileByID(ctx, liaisonID, uow)
	require.NoError(t, err)
	require.IsType(t, &profile.Liaison{}, p)
	assert.Equal(t, "Ines", p.(*profile.Liaison).FirstName)

	got, err := svc.GetCoachByID(ctx, coachID, uow)
	require.NoError(t, err)
	assert.Equal(t, 12, got.YearsExperience)

	_, err = svc.GetCoachByID(ctx, liaisonID, uow)
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)

	_, err = svc.GetProfileByID(ctx, "nobody", uow)
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestService_Athletes(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	bus := messagebus.New(nil)
	uow := unitofwork.New(db, NewAtomicContext, bus, nil)
	svc := New(nil)

	registered := make(chan domain.Event, 4)
	bus.Register(profile.EventAthleteRegistered, func(e domain.Event) error {
		registered <- e
		return nil
	})

	birth := time.Date(2008, 3, 14, 0, 0, 0, 0, time.UTC)
	zed, err := svc.RegisterAthlete(ctx, "Zoe", "Zed", &birth, "s-1", uow)
	require.NoError(t, err)
	assert.Positive(t, zed.AthleteID)
	assert.Equal(t, "S-1", zed.StudentCode)

	_, err = svc.RegisterAthlete(ctx, "Other", "Person", nil, " S-1", uow)
	assert.ErrorIs(t, err, profile.ErrStudentCodeUsed)

	abe, err := svc.RegisterAthlete(ctx, "Abe", "Adams", nil, "s-2", uow)
	require.NoError(t, err)
	assert.NotEqual(t, zed.AthleteID, abe.AthleteID)

	stored, err := svc.GetAthlete(ctx, zed.AthleteID, uow)
	require.NoError(t, err)
	require.NotNil(t, stored.BirthDate)
	assert.True(t, birth.Equal(*stored.BirthDate))

	list, err := svc.ListAthletes(ctx, 0, 0, uow)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adams", list[0].LastName)
	assert.Nil(t, list[0].BirthDate)

	_, err = svc.GetAthlete(ctx, 999, uow)
	assert.ErrorIs(t, err, profile.ErrAthleteNotFound)

	bus.Close()
	assert.Len(t, registered, 2)
}
