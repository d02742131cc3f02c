package measurementservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	measurementstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/measurements"
	profilestorage "github.com/burenotti/hoops_backend/internal/adapter/storage/profiles"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"time"
)

type MeasurementStorage interface {
	Add(ctx context.Context, m *measurement.Measurement) error
	GetByID(ctx context.Context, id string) (*measurement.Measurement, error)
	ListByAthlete(ctx context.Context, athleteID int64, limit, offset int) ([]*measurement.Measurement, error)
	ExistsForDate(ctx context.Context, athleteID int64, day time.Time) (bool, error)
	Persist(ctx context.Context, m *measurement.Measurement) error
	CollectEvents() []domain.Event
	Close() error
}

type AthleteStorage interface {
	AthleteExists(ctx context.Context, id int64) (bool, error)
	Close() error
}

type AtomicContext struct {
	ctx                context.Context
	db                 storage.DBContext
	MeasurementStorage MeasurementStorage
	AthleteStorage     AthleteStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.MeasurementStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if closeErr := a.AthleteStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.MeasurementStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:                ctx,
		db:                 dbContext,
		MeasurementStorage: measurementstorage.NewPostgresStorage(dbContext),
		AthleteStorage:     profilestorage.NewPostgresStorage(dbContext),
	}, nil
}
