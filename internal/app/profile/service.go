package profileapp

import (
	"context"
	"errors"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"log/slog"
	"time"
)

type Service struct {
	logger *slog.Logger
}

func New(
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
	}
}

func (s *Service) CreateCoach(
	ctx context.Context,
	userID string,
	firstName string,
	lastName string,
	yearsExperience int,
	bio string,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (coach *profile.Coach, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		if err := ensureNoProfile(ctx, userID); err != nil {
			return err
		}

		coach = profile.NewCoach(userID, firstName, lastName, yearsExperience, bio)
		if err := ctx.ProfileStorage.Add(ctx.Context(), coach); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) CreateLiaison(
	ctx context.Context,
	userID string,
	firstName string,
	lastName string,
	studentCode string,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (liaison *profile.Liaison, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		if err := ensureNoProfile(ctx, userID); err != nil {
			return err
		}

		liaison = profile.NewLiaison(userID, firstName, lastName, studentCode)
		if err := ctx.ProfileStorage.Add(ctx.Context(), liaison); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) GetProfileByID(
	ctx context.Context,
	userID string,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (p profile.Profile, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		p, err = ctx.ProfileStorage.GetByID(ctx.Context(), userID)
		return err
	})
	return
}

func (s *Service) GetCoachByID(
	ctx context.Context,
	userID string,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (*profile.Coach, error) {
	p, err := s.GetProfileByID(ctx, userID, uow)
	if err != nil {
		return nil, err
	}

	if c, ok := p.(*profile.Coach); ok {
		return c, nil
	}
	return nil, profile.ErrProfileNotFound
}

// RegisterAthlete adds an athlete to the club roster. Student codes are
// unique after normalization.
func (s *Service) RegisterAthlete(
	ctx context.Context,
	firstName string,
	lastName string,
	birthDate *time.Time,
	studentCode string,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (athlete *profile.Athlete, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		taken, err := ctx.ProfileStorage.StudentCodeTaken(ctx.Context(), studentCode)
		if err != nil {
			return err
		}
		if taken {
			return profile.ErrStudentCodeUsed
		}

		athlete = profile.NewAthlete(firstName, lastName, birthDate, studentCode)
		if err := ctx.ProfileStorage.AddAthlete(ctx.Context(), athlete); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) GetAthlete(
	ctx context.Context,
	athleteID int64,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (a *profile.Athlete, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		a, err = ctx.ProfileStorage.GetAthlete(ctx.Context(), athleteID)
		return err
	})
	return
}

func (s *Service) ListAthletes(
	ctx context.Context,
	limit, offset int,
	uow *unitofwork.UnitOfWork[*AtomicContext],
) (list []*profile.Athlete, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		list, err = ctx.ProfileStorage.ListAthletes(ctx.Context(), limit, offset)
		return err
	})
	return
}

// ensureNoProfile enforces one profile per user across both profile kinds.
func ensureNoProfile(ctx *AtomicContext, userID string) error {
	_, err := ctx.ProfileStorage.GetByID(ctx.Context(), userID)
	switch {
	case err == nil:
		return profile.ErrProfileExists
	case errors.Is(err, profile.ErrProfileNotFound):
		return nil
	}
	return err
}
