package groupstorage

import (
	"context"
	"database/sql"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/leporo/sqlf"
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

func (s *PostgresStorage) Add(ctx context.Context, g *group.Group) error {
	q := sqlf.InsertInto("groups").
		Set("group_id", g.GroupID).
		Set("name", g.Name).
		Set("description", g.Description).
		Set("season", g.Season).
		Set("coach_id", g.CoachID).
		Set("liaison_id", g.LiaisonID).
		Set("created_at", g.CreatedAt).
		Set("updated_at", g.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "groups_pkey") {
			return group.ErrGroupExists
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(g)
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) ([]*group.Group, error) {
	var tmp struct {
		GroupID     string
		Name        string
		Description string
		Season      string
		CoachID     string
		LiaisonID   *string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	q := sqlf.From("groups g").
		Select("g.group_id").To(&tmp.GroupID).
		Select("g.name").To(&tmp.Name).
		Select("g.description").To(&tmp.Description).
		Select("g.season").To(&tmp.Season).
		Select("g.coach_id").To(&tmp.CoachID).
		Select("g.liaison_id").To(&tmp.LiaisonID).
		Select("g.created_at").To(&tmp.CreatedAt).
		Select("g.updated_at").To(&tmp.UpdatedAt)

	q = modify(q)

	var groups []*group.Group
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		g := &group.Group{
			GroupID:     group.GroupID(tmp.GroupID),
			Name:        tmp.Name,
			Description: tmp.Description,
			Season:      tmp.Season,
			CoachID:     group.CoachID(tmp.CoachID),
			CreatedAt:   tmp.CreatedAt,
			UpdatedAt:   tmp.UpdatedAt,
		}
		if tmp.LiaisonID != nil {
			id := group.LiaisonID(*tmp.LiaisonID)
			g.LiaisonID = &id
		}
		groups = append(groups, g)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	return groups, nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, groupID group.GroupID) (*group.Group, error) {
	groups, err := s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("g.group_id = ?", groupID)
	})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, group.ErrGroupNotFound
	}
	s.base.MarkSeen(groups[0])
	return groups[0], nil
}

func (s *PostgresStorage) ListByCoach(
	ctx context.Context,
	coachID group.CoachID,
	limit, offset int,
) ([]*group.Group, error) {
	limit, offset = pgutil.Page(limit, offset)
	return s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("g.coach_id = ?", coachID).OrderBy("g.name").Limit(limit).Offset(offset)
	})
}

func (s *PostgresStorage) ListByLiaison(
	ctx context.Context,
	liaisonID group.LiaisonID,
	limit, offset int,
) ([]*group.Group, error) {
	limit, offset = pgutil.Page(limit, offset)
	return s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("g.liaison_id = ?", liaisonID).OrderBy("g.name").Limit(limit).Offset(offset)
	})
}

func (s *PostgresStorage) Persist(ctx context.Context, g *group.Group) error {
	q := sqlf.Update("groups").
		Where("group_id = ?", g.GroupID).
		Set("name", g.Name).
		Set("description", g.Description).
		Set("season", g.Season).
		Set("liaison_id", g.LiaisonID).
		Set("updated_at", g.UpdatedAt)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, group.ErrGroupNotFound); err != nil {
		return err
	}
	s.base.MarkSeen(g)
	return nil
}

func (s *PostgresStorage) GetMembers(
	ctx context.Context,
	groupID group.GroupID,
	limit, offset int,
) ([]*group.Member, error) {
	var tmp group.Member
	limit, offset = pgutil.Page(limit, offset)

	q := sqlf.From("enrollments e").
		Join("athletes a", "a.athlete_id = e.athlete_id").
		Where("e.group_id = ?", groupID).
		OrderBy("a.last_name", "a.first_name").
		Limit(limit).
		Offset(offset).
		Select("a.athlete_id").To(&tmp.AthleteID).
		Select("a.first_name").To(&tmp.FirstName).
		Select("a.last_name").To(&tmp.LastName).
		Select("a.student_code").To(&tmp.StudentCode).
		Select("e.active").To(&tmp.Active)

	var result []*group.Member
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		m := tmp
		result = append(result, &m)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

func (s *PostgresStorage) Close() error {
	return s.base.Close()
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}
