package groupservice

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/google/uuid"
	"log/slog"
	"strings"
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

// CreateGroup opens a group run by the given coach. Only users holding a
// coach profile may own groups.
func (s *Service) CreateGroup(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	coachID group.CoachID,
	name string,
	description string,
	season string,
) (g *group.Group, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		p, err := ctx.ProfilesStorage.GetByID(ctx.Context(), string(coachID))
		if err != nil {
			return err
		}
		if p.Type() != profile.TypeCoach {
			return profile.ErrProfileNotFound
		}

		groupID := group.GroupID(uuid.NewString())
		g = group.New(groupID, coachID, strings.TrimSpace(name), description, season)
		if err := ctx.GroupStorage.Add(ctx.Context(), g); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) GetByID(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	groupID group.GroupID,
) (g *group.Group, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		g, err = ctx.GroupStorage.GetByID(ctx.Context(), groupID)
		return err
	})
	return
}

func (s *Service) GetMembers(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	groupID group.GroupID,
	limit int,
	offset int,
) (m []*group.Member, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		if _, err := ctx.GroupStorage.GetByID(ctx.Context(), groupID); err != nil {
			return err
		}
		var err error
		m, err = ctx.GroupStorage.GetMembers(ctx.Context(), groupID, limit, offset)
		return err
	})
	return
}

// GetUserGroups lists the groups a coach runs or a liaison helps with.
func (s *Service) GetUserGroups(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	limit int,
	offset int,
) (groups []*group.Group, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		p, err := ctx.ProfilesStorage.GetByID(ctx.Context(), userID)
		if err != nil {
			return err
		}

		if p.Type() == profile.TypeCoach {
			groups, err = ctx.GroupStorage.ListByCoach(ctx.Context(), group.CoachID(userID), limit, offset)
		} else {
			groups, err = ctx.GroupStorage.ListByLiaison(ctx.Context(), group.LiaisonID(userID), limit, offset)
		}
		return err
	})
	return
}

// AssignLiaison attaches a liaison student to the group, replacing the
// previous one if any.
func (s *Service) AssignLiaison(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	groupID group.GroupID,
	liaisonID group.LiaisonID,
) (g *group.Group, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		p, err := ctx.ProfilesStorage.GetByID(ctx.Context(), string(liaisonID))
		if err != nil {
			return err
		}
		if p.Type() != profile.TypeLiaison {
			return profile.ErrProfileNotFound
		}

		if g, err = ctx.GroupStorage.GetByID(ctx.Context(), groupID); err != nil {
			return err
		}
		g.AssignLiaison(liaisonID)
		if err := ctx.GroupStorage.Persist(ctx.Context(), g); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}
