package enrollmentservice

import (
	"context"
	"errors"
	enrollmentstorage "github.com/burenotti/hoops_backend/internal/adapter/storage/enrollments"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/enrollment"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"log/slog"
)

type Service struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Enroll adds the athlete to the group. Enrolling twice in the same group is
// an error even if the first enrollment was deactivated; reactivate it
// instead.
func (s *Service) Enroll(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	groupID group.GroupID,
	athleteID int64,
) (e *enrollment.Enrollment, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		if _, err := ctx.GroupStorage.GetByID(ctx.Context(), groupID); err != nil {
			return err
		}

		exists, err := ctx.AthleteStorage.AthleteExists(ctx.Context(), athleteID)
		if err != nil {
			return err
		}
		if !exists {
			return profile.ErrAthleteNotFound
		}

		_, err = ctx.EnrollmentStorage.GetByGroupAndAthlete(ctx.Context(), string(groupID), athleteID)
		switch {
		case err == nil:
			return enrollment.ErrEnrollmentExists
		case !errors.Is(err, enrollment.ErrEnrollmentNotFound):
			return err
		}

		e = enrollment.New(enrollment.EnrollmentID(uuid.NewString()), string(groupID), athleteID)
		if err := ctx.EnrollmentStorage.Add(ctx.Context(), e); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) SetActive(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	enrollmentID enrollment.EnrollmentID,
	active bool,
) (e *enrollment.Enrollment, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.EnrollmentStorage.GetByID(ctx.Context(), enrollmentID); err != nil {
			return err
		}
		e.SetActive(active)
		if err := ctx.EnrollmentStorage.Persist(ctx.Context(), e); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) ListByGroup(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	groupID group.GroupID,
) (list []*enrollment.Enrollment, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		list, err = ctx.EnrollmentStorage.ListByGroup(ctx.Context(), string(groupID))
		return err
	})
	return
}

// EligibleAthletes returns the athletes that may receive new trials, within
// one group or club-wide when groupID is empty, along with their id set.
func (s *Service) EligibleAthletes(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	groupID group.GroupID,
) (list []enrollmentstorage.EligibleAthlete, set assessment.AthleteSet, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		list, err = ctx.EnrollmentStorage.ListEligible(ctx.Context(), string(groupID))
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	set = assessment.NewAthleteSet(lo.Map(list, func(a enrollmentstorage.EligibleAthlete, _ int) int64 {
		return a.AthleteID
	})...)
	return list, set, nil
}
