package auth

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/userstorage"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/user"
)

type UserStorage interface {
	Add(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, userID string) (*user.User, error)
	GetByAuthSecret(ctx context.Context, secret string) (*user.User, error)
	Persist(ctx context.Context, u *user.User) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx       context.Context
	dbContext storage.DBContext
	UserStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.dbContext.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.UserStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.UserStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:         ctx,
		dbContext:   dbContext,
		UserStorage: userstorage.NewPostgresStorage(dbContext, nil),
	}, nil
}
