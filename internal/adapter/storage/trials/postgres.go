package trialstorage

import (
	"context"
	"database/sql"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
	"github.com/burenotti/hoops_backend/internal/domain/trial"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
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

func (s *PostgresStorage) Add(ctx context.Context, t *trial.Trial) error {
	q := sqlf.InsertInto("trials").
		Set("trial_id", t.TrialID).
		Set("athlete_id", t.AthleteID).
		Set("trial_type", string(t.Type)).
		Set("result", t.Result).
		Set("notes", t.Notes).
		Set("active", t.Active).
		Set("recorded_by", t.RecordedBy).
		Set("created_at", t.CreatedAt).
		Set("updated_at", t.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		switch {
		case pgutil.ViolatesConstraint(err, "trials_pkey"):
			return trial.ErrTrialExists
		case pgutil.ViolatesConstraint(err, "trials_athlete_id_fkey"):
			return profile.ErrAthleteNotFound
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(t)
	return nil
}

// Filter narrows trial listings. Zero values mean no restriction.
type Filter struct {
	Type       assessment.TrialType
	ActiveOnly bool
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) ([]*trial.Trial, error) {
	var tmp struct {
		TrialID    string
		AthleteID  int64
		Type       string
		Result     float64
		Notes      string
		Active     bool
		RecordedBy string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	q := sqlf.From("trials t").
		Select("t.trial_id").To(&tmp.TrialID).
		Select("t.athlete_id").To(&tmp.AthleteID).
		Select("t.trial_type").To(&tmp.Type).
		Select("t.result").To(&tmp.Result).
		Select("t.notes").To(&tmp.Notes).
		Select("t.active").To(&tmp.Active).
		Select("t.recorded_by").To(&tmp.RecordedBy).
		Select("t.created_at").To(&tmp.CreatedAt).
		Select("t.updated_at").To(&tmp.UpdatedAt)

	q = modify(q)

	var result []*trial.Trial
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, &trial.Trial{
			TrialID:    tmp.TrialID,
			AthleteID:  tmp.AthleteID,
			Type:       assessment.TrialType(tmp.Type),
			Result:     tmp.Result,
			Notes:      tmp.Notes,
			Active:     tmp.Active,
			RecordedBy: tmp.RecordedBy,
			CreatedAt:  tmp.CreatedAt,
			UpdatedAt:  tmp.UpdatedAt,
		})
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id string) (*trial.Trial, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("t.trial_id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, trial.ErrTrialNotFound
	}
	s.base.MarkSeen(result[0])
	return result[0], nil
}

func (s *PostgresStorage) ListByAthlete(
	ctx context.Context,
	athleteID int64,
	f Filter,
	limit, offset int,
) ([]*trial.Trial, error) {
	limit, offset = pgutil.Page(limit, offset)
	return s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		stmt = stmt.Where("t.athlete_id = ?", athleteID)
		if f.Type != "" {
			stmt = stmt.Where("t.trial_type = ?", string(f.Type))
		}
		if f.ActiveOnly {
			stmt = stmt.Where("t.active = ?", true)
		}
		return stmt.OrderBy("t.created_at DESC").Limit(limit).Offset(offset)
	})
}

func (s *PostgresStorage) Persist(ctx context.Context, t *trial.Trial) error {
	dbState, err := s.GetByID(ctx, t.TrialID)
	if err != nil {
		return err
	}

	changes, err := diff.Diff(dbState, t)
	if err != nil {
		return storage.InternalError(err)
	}

	if len(changes) != 0 {
		q := sqlf.Update("trials").Where("trial_id = ?", t.TrialID)
		q = pgutil.MakeUpdateQuery(q, changes)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, trial.ErrTrialNotFound); err != nil {
			return err
		}
	}

	s.base.MarkSeen(t)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	return s.base.Close()
}
