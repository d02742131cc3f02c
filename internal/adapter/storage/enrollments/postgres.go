package enrollmentstorage

import (
	"context"
	"database/sql"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/enrollment"
	"github.com/burenotti/hoops_backend/internal/domain/group"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
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

func (s *PostgresStorage) Add(ctx context.Context, e *enrollment.Enrollment) error {
	q := sqlf.InsertInto("enrollments").
		Set("enrollment_id", e.EnrollmentID).
		Set("group_id", e.GroupID).
		Set("athlete_id", e.AthleteID).
		Set("active", e.Active).
		Set("enrolled_at", e.EnrolledAt).
		Set("updated_at", e.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		switch {
		case pgutil.ViolatesConstraint(err, "enrollments_pkey"),
			pgutil.ViolatesConstraint(err, "enrollments_group_athlete_key"):
			return enrollment.ErrEnrollmentExists
		case pgutil.ViolatesConstraint(err, "enrollments_group_id_fkey"):
			return group.ErrGroupNotFound
		case pgutil.ViolatesConstraint(err, "enrollments_athlete_id_fkey"):
			return profile.ErrAthleteNotFound
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(e)
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) ([]*enrollment.Enrollment, error) {
	var tmp struct {
		EnrollmentID string
		GroupID      string
		AthleteID    int64
		Active       bool
		EnrolledAt   time.Time
		UpdatedAt    time.Time
	}

	q := sqlf.From("enrollments e").
		Select("e.enrollment_id").To(&tmp.EnrollmentID).
		Select("e.group_id").To(&tmp.GroupID).
		Select("e.athlete_id").To(&tmp.AthleteID).
		Select("e.active").To(&tmp.Active).
		Select("e.enrolled_at").To(&tmp.EnrolledAt).
		Select("e.updated_at").To(&tmp.UpdatedAt)

	q = modify(q)

	var result []*enrollment.Enrollment
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, &enrollment.Enrollment{
			EnrollmentID: enrollment.EnrollmentID(tmp.EnrollmentID),
			GroupID:      tmp.GroupID,
			AthleteID:    tmp.AthleteID,
			Active:       tmp.Active,
			EnrolledAt:   tmp.EnrolledAt,
			UpdatedAt:    tmp.UpdatedAt,
		})
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

func (s *PostgresStorage) first(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) (*enrollment.Enrollment, error) {
	result, err := s.get(ctx, modify)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, enrollment.ErrEnrollmentNotFound
	}
	s.base.MarkSeen(result[0])
	return result[0], nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id enrollment.EnrollmentID) (*enrollment.Enrollment, error) {
	return s.first(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("e.enrollment_id = ?", id)
	})
}

func (s *PostgresStorage) GetByGroupAndAthlete(
	ctx context.Context,
	groupID string,
	athleteID int64,
) (*enrollment.Enrollment, error) {
	return s.first(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("e.group_id = ?", groupID).Where("e.athlete_id = ?", athleteID)
	})
}

func (s *PostgresStorage) ListByGroup(ctx context.Context, groupID string) ([]*enrollment.Enrollment, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("e.group_id = ?", groupID).OrderBy("e.enrolled_at")
	})
}

// EligibleAthlete is an athlete holding at least one active enrollment.
type EligibleAthlete struct {
	AthleteID   int64
	FirstName   string
	LastName    string
	StudentCode string
}

// ListEligible returns athletes actively enrolled in the group, or in any
// group when groupID is empty.
func (s *PostgresStorage) ListEligible(ctx context.Context, groupID string) ([]EligibleAthlete, error) {
	var tmp EligibleAthlete

	q := sqlf.From("enrollments e").
		Join("athletes a", "a.athlete_id = e.athlete_id").
		Where("e.active = ?", true).
		Select("a.athlete_id").To(&tmp.AthleteID).
		Select("a.first_name").To(&tmp.FirstName).
		Select("a.last_name").To(&tmp.LastName).
		Select("a.student_code").To(&tmp.StudentCode).
		OrderBy("a.last_name", "a.first_name", "a.athlete_id")

	if groupID != "" {
		q = q.Where("e.group_id = ?", groupID)
	}

	var result []EligibleAthlete
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, tmp)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}

	return lo.UniqBy(result, func(a EligibleAthlete) int64 {
		return a.AthleteID
	}), nil
}

func (s *PostgresStorage) HasActive(ctx context.Context, athleteID int64) (bool, error) {
	var count int
	q := sqlf.From("enrollments").
		Select("COUNT(*)").To(&count).
		Where("athlete_id = ?", athleteID).
		Where("active = ?", true)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return false, storage.InternalError(err)
	}
	return count > 0, nil
}

func (s *PostgresStorage) Persist(ctx context.Context, e *enrollment.Enrollment) error {
	dbState, err := s.GetByID(ctx, e.EnrollmentID)
	if err != nil {
		return err
	}

	changes, err := diff.Diff(dbState, e)
	if err != nil {
		return storage.InternalError(err)
	}
	if len(changes) == 0 {
		return nil
	}

	q := sqlf.Update("enrollments").Where("enrollment_id = ?", e.EnrollmentID)
	q = pgutil.MakeUpdateQuery(q, changes)
	s.logger.Debug("persisting enrollment", "query", q.String())

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, enrollment.ErrEnrollmentNotFound); err != nil {
		return err
	}

	s.base.MarkSeen(e)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	return s.base.Close()
}
