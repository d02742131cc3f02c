package profilestorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/leporo/sqlf"
	"time"
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, p profile.Profile) error {
	switch v := p.(type) {
	case *profile.Coach:
		return s.addCoach(ctx, v)
	case *profile.Liaison:
		return s.addLiaison(ctx, v)
	default:
		panic(fmt.Sprintf("unknown profile type %T", p))
	}
}

func (s *PostgresStorage) addCoach(ctx context.Context, c *profile.Coach) error {
	q := sqlf.InsertInto("coaches_profiles").
		Set("user_id", c.UserID).
		Set("first_name", c.FirstName).
		Set("last_name", c.LastName).
		Set("years_experience", c.YearsExperience).
		Set("bio", c.Bio)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "coaches_profiles_pkey") {
			return profile.ErrProfileExists
		}
		return storage.InternalError(err)
	}
	s.base.MarkSeen(c)
	return nil
}

func (s *PostgresStorage) addLiaison(ctx context.Context, l *profile.Liaison) error {
	q := sqlf.InsertInto("liaisons_profiles").
		Set("user_id", l.UserID).
		Set("first_name", l.FirstName).
		Set("last_name", l.LastName).
		Set("student_code", l.StudentCode)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "liaisons_profiles_pkey") {
			return profile.ErrProfileExists
		}
		return storage.InternalError(err)
	}
	s.base.MarkSeen(l)
	return nil
}

// GetByID looks the user up as a coach first, then as a liaison.
func (s *PostgresStorage) GetByID(ctx context.Context, userID string) (profile.Profile, error) {
	var c profile.Coach
	q := sqlf.From("coaches_profiles").
		Select("user_id").To(&c.UserID).
		Select("first_name").To(&c.FirstName).
		Select("last_name").To(&c.LastName).
		Select("years_experience").To(&c.YearsExperience).
		Select("bio").To(&c.Bio).
		Where("user_id = ?", userID)

	err := q.QueryRowAndClose(ctx, s.base.DB)
	if err == nil {
		return profile.NewCoach(c.UserID, c.FirstName, c.LastName, c.YearsExperience, c.Bio), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}

	var l profile.Liaison
	q = sqlf.From("liaisons_profiles").
		Select("user_id").To(&l.UserID).
		Select("first_name").To(&l.FirstName).
		Select("last_name").To(&l.LastName).
		Select("student_code").To(&l.StudentCode).
		Where("user_id = ?", userID)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return nil, pgutil.NotFound(err, profile.ErrProfileNotFound)
	}
	return profile.NewLiaison(l.UserID, l.FirstName, l.LastName, l.StudentCode), nil
}

// AddAthlete inserts the athlete and stores the generated id on it.
func (s *PostgresStorage) AddAthlete(ctx context.Context, a *profile.Athlete) error {
	var id int64
	q := sqlf.InsertInto("athletes").
		Set("first_name", a.FirstName).
		Set("last_name", a.LastName).
		Set("birth_date", a.BirthDate).
		Set("student_code", a.StudentCode).
		Set("created_at", a.CreatedAt).
		Returning("athlete_id").To(&id)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "athletes_student_code_key") {
			return profile.ErrStudentCodeUsed
		}
		return storage.InternalError(err)
	}

	a.Registered(id)
	s.base.MarkSeen(a)
	return nil
}

func (s *PostgresStorage) getAthletes(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) ([]*profile.Athlete, error) {
	var tmp struct {
		AthleteID   int64
		FirstName   string
		LastName    string
		BirthDate   *time.Time
		StudentCode string
		CreatedAt   time.Time
	}

	q := sqlf.From("athletes a").
		Select("a.athlete_id").To(&tmp.AthleteID).
		Select("a.first_name").To(&tmp.FirstName).
		Select("a.last_name").To(&tmp.LastName).
		Select("a.birth_date").To(&tmp.BirthDate).
		Select("a.student_code").To(&tmp.StudentCode).
		Select("a.created_at").To(&tmp.CreatedAt)

	q = modify(q)

	var result []*profile.Athlete
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		a := &profile.Athlete{
			AthleteID:   tmp.AthleteID,
			FirstName:   tmp.FirstName,
			LastName:    tmp.LastName,
			StudentCode: tmp.StudentCode,
			CreatedAt:   tmp.CreatedAt,
		}
		if tmp.BirthDate != nil {
			bd := *tmp.BirthDate
			a.BirthDate = &bd
		}
		result = append(result, a)
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

func (s *PostgresStorage) GetAthlete(ctx context.Context, id int64) (*profile.Athlete, error) {
	result, err := s.getAthletes(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("a.athlete_id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, profile.ErrAthleteNotFound
	}
	return result[0], nil
}

func (s *PostgresStorage) ListAthletes(ctx context.Context, limit, offset int) ([]*profile.Athlete, error) {
	limit, offset = pgutil.Page(limit, offset)
	return s.getAthletes(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.OrderBy("a.last_name", "a.first_name").Limit(limit).Offset(offset)
	})
}

func (s *PostgresStorage) AthleteExists(ctx context.Context, id int64) (bool, error) {
	var count int
	q := sqlf.From("athletes").Select("COUNT(*)").To(&count).Where("athlete_id = ?", id)
	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return false, storage.InternalError(err)
	}
	return count > 0, nil
}

func (s *PostgresStorage) StudentCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int
	q := sqlf.From("athletes").
		Select("COUNT(*)").To(&count).
		Where("student_code = ?", profile.NormalizeStudentCode(code))
	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return false, storage.InternalError(err)
	}
	return count > 0, nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	return s.base.Close()
}
