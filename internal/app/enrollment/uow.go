package enrollmentservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	enrollmentstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/enrollments"
	groupstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/groups"
	profilestorage "github.com/burenotti/hoops_backend/internal/adapter/storage/profiles"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/enrollment"
	"github.com/burenotti/hoops_backend/internal/domain/group"
)

type EnrollmentStorage interface {
	Add(ctx context.Context, e *enrollment.Enrollment) error
	Persist(ctx context.Context, e *enrollment.Enrollment) error
	GetByID(ctx context.Context, id enrollment.EnrollmentID) (*enrollment.Enrollment, error)
	GetByGroupAndAthlete(ctx context.Context, groupID string, athleteID int64) (*enrollment.Enrollment, error)
	ListByGroup(ctx context.Context, groupID string) ([]*enrollment.Enrollment, error)
	ListEligible(ctx context.Context, groupID string) ([]enrollmentstorage.EligibleAthlete, error)

	Close() error
	CollectEvents() []domain.Event
}

type GroupStorage interface {
	GetByID(ctx context.Context, groupID group.GroupID) (*group.Group, error)
	Close() error
}

type AthleteStorage interface {
	AthleteExists(ctx context.Context, id int64) (bool, error)
	Close() error
}

type AtomicContext struct {
	ctx               context.Context
	db                storage.DBContext
	EnrollmentStorage EnrollmentStorage
	GroupStorage      GroupStorage
	AthleteStorage    AthleteStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	for _, c := range []interface{ Close() error }{a.EnrollmentStorage, a.GroupStorage, a.AthleteStorage} {
		if closeErr := c.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.EnrollmentStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:               ctx,
		db:                dbContext,
		EnrollmentStorage: enrollmentstorage.NewPostgresStorage(dbContext, nil),
		GroupStorage:      groupstorage.NewPostgresStorage(dbContext, nil),
		AthleteStorage:    profilestorage.NewPostgresStorage(dbContext),
	}, nil
}
