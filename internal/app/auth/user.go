package auth

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/app/unitofwork"
	"github.com/burenotti/hoops_backend/internal/domain/user"
	"log/slog"
	"strings"
	"time"
)

var (
	ErrInvalidAuthorization = errors.New("invalid authorization")
)

type Service struct {
	logger     *slog.Logger
	Authorizer *Authorizer
}

func NewService(auth *Authorizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:     logger,
		Authorizer: auth,
	}
}

func (s *Service) CreateUser(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	email string,
	password string,
) (u *user.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		_, err := ctx.UserStorage.GetByEmail(ctx.Context(), email)
		switch {
		case err == nil:
			return user.ErrUserEmailDuplicate
		case !errors.Is(err, user.ErrUserNotFound):
			return err
		}

		u = user.NewUser(userID, email, password, s.Authorizer)
		if err := ctx.UserStorage.Add(ctx.Context(), u); err != nil {
			return err
		}

		return ctx.Commit()
	})
	return
}

// Login checks the credentials and opens a new authorization for the
// device. Unknown emails are reported as invalid credentials.
func (s *Service) Login(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	device user.Device,
	email string,
	password string,
) (tokens Tokens, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByEmail(ctx.Context(), email)
		if errors.Is(err, user.ErrUserNotFound) {
			return user.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}

		a, err := u.Authorize(s.Authorizer, password, device)
		if err != nil {
			return err
		}

		accessToken, err := s.Authorizer.GenerateAccessToken(u, a)
		if err != nil {
			return err
		}

		if err := ctx.UserStorage.Persist(ctx.Context(), u); err != nil {
			return err
		}

		tokens = Tokens{
			AccessToken:  accessToken,
			RefreshToken: a.Secret,
		}
		return ctx.Commit()
	})
	return
}

func (s *Service) Logout(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	authID string,
) error {
	return uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByID(ctx.Context(), userID)
		if err != nil {
			return err
		}

		if err := u.Logout(authID); err != nil {
			return err
		}

		if err := ctx.UserStorage.Persist(ctx.Context(), u); err != nil {
			return err
		}

		return ctx.Commit()
	})
}

// Refresh issues a new access token for the authorization holding the
// given refresh secret.
func (s *Service) Refresh(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	refreshToken string,
) (tokens Tokens, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByAuthSecret(ctx.Context(), refreshToken)
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidAuthorization
		}
		if err != nil {
			return err
		}

		a := u.GetAuthBySecret(refreshToken)
		if a == nil || !a.IsActive(time.Now()) {
			return fmt.Errorf("%w: authorization is not active", ErrInvalidAuthorization)
		}

		tokens.AccessToken, err = s.Authorizer.GenerateAccessToken(u, a)
		tokens.RefreshToken = a.Secret
		return err
	})
	return
}

// IsActive reports whether the authorization named in an access token is
// still open. Tokens outlive logouts otherwise.
func (s *Service) IsActive(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	data *AccessTokenData,
) (active bool, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByID(ctx.Context(), data.UserID)
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		a := u.GetAuthByID(data.Authorization)
		active = a != nil && a.IsActive(time.Now())
		return nil
	})
	return
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
