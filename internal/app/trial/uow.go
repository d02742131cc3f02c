package trialservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	enrollmentstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/enrollments"
	trialstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/trials"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
)

type TrialStorage interface {
	Add(ctx context.Context, t *trial.Trial) error
	GetByID(ctx context.Context, id string) (*trial.Trial, error)
	ListByAthlete(
		ctx context.Context,
		athleteID int64,
		f trialstorage.Filter,
		limit, offset int,
	) ([]*trial.Trial, error)
	Persist(ctx context.Context, t *trial.Trial) error
	CollectEvents() []domain.Event
	Close() error
}

type EnrollmentStorage interface {
	ListEligible(ctx context.Context, groupID string) ([]enrollmentstorage.EligibleAthlete, error)
	HasActive(ctx context.Context, athleteID int64) (bool, error)
	Close() error
}

type AtomicContext struct {
	ctx               context.Context
	db                storage.DBContext
	TrialStorage      TrialStorage
	EnrollmentStorage EnrollmentStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.TrialStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if closeErr := a.EnrollmentStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.TrialStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:               ctx,
		db:                dbContext,
		TrialStorage:      trialstorage.NewPostgresStorage(dbContext),
		EnrollmentStorage: enrollmentstorage.NewPostgresStorage(dbContext, nil),
	}, nil
}
