package profileapp

import (
	"context"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	profilestorage "github.com/burenotti/hoops_backend/internal/adapter/storage/profiles"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
)

type AtomicContext struct {
	ctx            context.Context
	dbContext      storage.DBContext
	ProfileStorage ProfileStorage
}

type ProfileStorage interface {
	Add(ctx context.Context, p profile.Profile) error
	GetByID(ctx context.Context, userID string) (profile.Profile, error)
	AddAthlete(ctx context.Context, a *profile.Athlete) error
	GetAthlete(ctx context.Context, id int64) (*profile.Athlete, error)
	ListAthletes(ctx context.Context, limit, offset int) ([]*profile.Athlete, error)
	StudentCodeTaken(ctx context.Context, code string) (bool, error)
	CollectEvents() []domain.Event
	Close() error
}

func NewAtomicContext(
	ctx context.Context,
	dbContext storage.DBContext,
) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:            ctx,
		dbContext:      dbContext,
		ProfileStorage: profilestorage.NewPostgresStorage(dbContext),
	}, nil
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.dbContext.Commit()
}

func (a *AtomicContext) Close() error {
	return a.ProfileStorage.Close()
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.ProfileStorage.CollectEvents()
}
