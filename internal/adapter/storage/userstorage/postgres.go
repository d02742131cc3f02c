package userstorage

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/user"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"github.com/samber/lo"
	"log/slog"
	"time"
)

type PostgresStorage struct {
	base   *pgutil.BasePostgresStorage
	logger *slog.Logger
}

func NewPostgresStorage(db storage.DBContext, logger *slog.Logger) *PostgresStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStorage{
		base:   pgutil.NewBasePostgresStorage(db),
		logger: logger,
	}
}

func (s *PostgresStorage) Add(ctx context.Context, u *user.User) error {
	q := sqlf.InsertInto("users").
		Set("user_id", u.UserID).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("created_at", u.CreatedAt).
		Set("updated_at", u.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		switch {
		case pgutil.ViolatesConstraint(err, "users_pkey"):
			return fmt.Errorf("%w: %s", user.ErrUserExists, u.UserID)
		case pgutil.ViolatesConstraint(err, "users_email_key"):
			return user.ErrUserEmailDuplicate
		}
		return storage.InternalError(err)
	}

	for _, a := range u.Authorizations {
		if err := s.addAuth(ctx, u.UserID, a); err != nil {
			return err
		}
	}

	s.base.MarkSeen(u)
	return nil
}

func (s *PostgresStorage) addAuth(ctx context.Context, userID string, a *user.Authorization) error {
	addAuth := sqlf.InsertInto("authorizations").
		Set("authorization_id", a.ID).
		Set("secret", a.Secret).
		Set("logout_at", a.LogoutAt).
		Set("created_at", a.CreatedAt).
		Set("valid_until", a.ValidUntil).
		Set("user_id", userID)

	if _, err := addAuth.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.IsIntegrityViolation(err) {
			return user.ErrAuthorizationExists
		}
		return storage.InternalError(err)
	}

	addDevice := sqlf.InsertInto("devices").
		Set("authorization_id", a.ID).
		Set("os", a.Device.OS).
		Set("device_model", a.Device.Model).
		Set("ip_address", a.Device.IPAddress).
		Set("browser", a.Device.Browser)

	if _, err := addDevice.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.IsIntegrityViolation(err) {
			return user.ErrDeviceExists
		}
		return storage.InternalError(err)
	}

	return nil
}

func (s *PostgresStorage) get(ctx context.Context, whereClause string, whereArgs ...any) (*user.User, error) {
	var tmp userWithAuthRow

	q := sqlf.From("users u").
		LeftJoin("authorizations a", "u.user_id = a.user_id").
		LeftJoin("devices d", "d.authorization_id = a.authorization_id").
		Where(whereClause, whereArgs...).
		Select("u.user_id").To(&tmp.UserID).
		Select("u.email").To(&tmp.Email).
		Select("u.password_hash").To(&tmp.PasswordHash).
		Select("u.created_at").To(&tmp.CreatedAt).
		Select("u.updated_at").To(&tmp.UpdatedAt).
		Select("a.authorization_id").To(&tmp.AuthorizationID).
		Select("a.secret").To(&tmp.Secret).
		Select("a.valid_until").To(&tmp.AuthValidUntil).
		Select("a.logout_at").To(&tmp.LogoutAt).
		Select("a.created_at").To(&tmp.AuthCreatedAt).
		Select("d.os").To(&tmp.OS).
		Select("d.browser").To(&tmp.Browser).
		Select("d.device_model").To(&tmp.Model).
		Select("d.ip_address").To(&tmp.IPAddress)

	var fetched []userWithAuthRow
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		fetched = append(fetched, tmp)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}

	users := rowsToDomain(fetched)
	if len(users) == 0 {
		return nil, user.ErrUserNotFound
	}
	s.base.MarkSeen(users[0])
	return users[0], nil
}

func (s *PostgresStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.get(ctx, "u.email = ?", email)
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID string) (*user.User, error) {
	return s.get(ctx, "u.user_id = ?", userID)
}

// GetByAuthSecret finds the owner of a refresh token. The whole user is
// loaded, not just the matching authorization.
func (s *PostgresStorage) GetByAuthSecret(ctx context.Context, secret string) (*user.User, error) {
	return s.get(ctx,
		"u.user_id = (SELECT ua.user_id FROM authorizations ua WHERE ua.secret = ?)", secret)
}

func (s *PostgresStorage) Persist(ctx context.Context, u *user.User) error {
	dbState, err := s.GetByID(ctx, u.UserID)
	if err != nil {
		return err
	}

	changes, err := diff.Diff(dbState, u)
	if err != nil {
		return storage.InternalError(err)
	}
	if len(changes) != 0 {
		q := sqlf.Update("users").Where("user_id = ?", u.UserID)
		q = pgutil.MakeUpdateQuery(q, changes)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, user.ErrUserNotFound); err != nil {
			return fmt.Errorf("can't persist user: %w", err)
		}
	}

	stored := lo.KeyBy(dbState.Authorizations, func(a *user.Authorization) string {
		return a.ID
	})

	for _, a := range u.Authorizations {
		src, ok := stored[a.ID]
		if !ok {
			if err := s.addAuth(ctx, u.UserID, a); err != nil {
				return err
			}
			continue
		}
		if err := s.persistAuth(ctx, src, a); err != nil {
			return err
		}
	}

	s.base.MarkSeen(u)
	return nil
}

func (s *PostgresStorage) persistAuth(ctx context.Context, source, changed *user.Authorization) error {
	changes, err := diff.Diff(source, changed)
	if err != nil {
		return storage.InternalError(err)
	}
	if len(changes) != 0 {
		q := sqlf.Update("authorizations").Where("authorization_id = ?", source.ID)
		q = pgutil.MakeUpdateQuery(q, changes)

		if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
			return storage.InternalError(err)
		}
	}
	return s.persistDevice(ctx, source.ID, &source.Device, &changed.Device)
}

func (s *PostgresStorage) persistDevice(ctx context.Context, id string, source, changed *user.Device) error {
	changes, err := diff.Diff(source, changed)
	if err != nil {
		return storage.InternalError(err)
	}
	if len(changes) == 0 {
		return nil
	}

	q := sqlf.Update("devices").Where("authorization_id = ?", id)
	q = pgutil.MakeUpdateQuery(q, changes)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	return s.base.Close()
}

type userWithAuthRow struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	AuthorizationID *string
	Secret          *string
	LogoutAt        *time.Time
	AuthCreatedAt   *time.Time
	AuthValidUntil  *time.Time

	IPAddress *string
	Browser   *string
	OS        *string
	Model     *string
}

func rowsToDomain(rows []userWithAuthRow) []*user.User {
	var users []*user.User
	byID := make(map[string]*user.User)

	for _, row := range rows {
		u, ok := byID[row.UserID]
		if !ok {
			u = &user.User{
				UserID:         row.UserID,
				Email:          row.Email,
				PasswordHash:   row.PasswordHash,
				CreatedAt:      row.CreatedAt,
				UpdatedAt:      row.UpdatedAt,
				Authorizations: make([]*user.Authorization, 0),
			}
			byID[row.UserID] = u
			users = append(users, u)
		}
		if row.AuthorizationID == nil {
			continue
		}
		a := &user.Authorization{
			ID:         *row.AuthorizationID,
			Secret:     lo.FromPtr(row.Secret),
			CreatedAt:  lo.FromPtr(row.AuthCreatedAt),
			ValidUntil: lo.FromPtr(row.AuthValidUntil),
			LogoutAt:   row.LogoutAt,
			Device: user.Device{
				Browser:   lo.FromPtr(row.Browser),
				OS:        lo.FromPtr(row.OS),
				IPAddress: lo.FromPtr(row.IPAddress),
				Model:     lo.FromPtr(row.Model),
			},
		}
		u.Authorizations = append(u.Authorizations, a)
	}
	return users
}
