package measurementstorage

import (
	"context"
	"database/sql"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"github.com/burenotti/hoops_backend/internal/domain/measurement"
	"github.com/burenotti/hoops_backend/internal/domain/profile"
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

func (s *PostgresStorage) Add(ctx context.Context, m *measurement.Measurement) error {
	q := sqlf.InsertInto("measurements").
		Set("measurement_id", m.MeasurementID).
		Set("athlete_id", m.AthleteID).
		Set("record_date", dateParam(m.RecordDate)).
		Set("weight_kg", m.WeightKg).
		Set("height_m", m.HeightM).
		Set("sitting_height_m", m.SittingHeightM).
		Set("arm_span_m", m.ArmSpanM).
		Set("notes", m.Notes).
		Set("recorded_by", m.RecordedBy).
		Set("created_at", m.CreatedAt).
		Set("updated_at", m.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		switch {
		case pgutil.ViolatesConstraint(err, "measurements_pkey"):
			return measurement.ErrMeasurementExists
		case pgutil.ViolatesConstraint(err, "measurements_athlete_date_key"):
			return measurement.ErrDuplicateRecord
		case pgutil.ViolatesConstraint(err, "measurements_athlete_id_fkey"):
			return profile.ErrAthleteNotFound
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(m)
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) ([]*measurement.Measurement, error) {
	var tmp struct {
		MeasurementID  string
		AthleteID      int64
		RecordDate     time.Time
		WeightKg       float64
		HeightM        float64
		SittingHeightM float64
		ArmSpanM       float64
		Notes          string
		RecordedBy     string
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	q := sqlf.From("measurements m").
		Select("m.measurement_id").To(&tmp.MeasurementID).
		Select("m.athlete_id").To(&tmp.AthleteID).
		Select("m.record_date").To(&tmp.RecordDate).
		Select("m.weight_kg").To(&tmp.WeightKg).
		Select("m.height_m").To(&tmp.HeightM).
		Select("m.sitting_height_m").To(&tmp.SittingHeightM).
		Select("m.arm_span_m").To(&tmp.ArmSpanM).
		Select("m.notes").To(&tmp.Notes).
		Select("m.recorded_by").To(&tmp.RecordedBy).
		Select("m.created_at").To(&tmp.CreatedAt).
		Select("m.updated_at").To(&tmp.UpdatedAt)

	q = modify(q)

	var result []*measurement.Measurement
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, &measurement.Measurement{
			MeasurementID:  tmp.MeasurementID,
			AthleteID:      tmp.AthleteID,
			RecordDate:     measurement.Day(tmp.RecordDate),
			WeightKg:       tmp.WeightKg,
			HeightM:        tmp.HeightM,
			SittingHeightM: tmp.SittingHeightM,
			ArmSpanM:       tmp.ArmSpanM,
			Notes:          tmp.Notes,
			RecordedBy:     tmp.RecordedBy,
			CreatedAt:      tmp.CreatedAt,
			UpdatedAt:      tmp.UpdatedAt,
		})
	})
	if err != nil {
		return nil, storage.InternalError(err)
	}
	return result, nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id string) (*measurement.Measurement, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("m.measurement_id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, measurement.ErrMeasurementNotFound
	}
	s.base.MarkSeen(result[0])
	return result[0], nil
}

func (s *PostgresStorage) ListByAthlete(
	ctx context.Context,
	athleteID int64,
	limit, offset int,
) ([]*measurement.Measurement, error) {
	limit, offset = pgutil.Page(limit, offset)
	return s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("m.athlete_id = ?", athleteID).
			OrderBy("m.record_date DESC", "m.created_at DESC").
			Limit(limit).
			Offset(offset)
	})
}

// ExistsForDate reports whether the athlete already has a record for the day.
func (s *PostgresStorage) ExistsForDate(ctx context.Context, athleteID int64, day time.Time) (bool, error) {
	var count int
	q := sqlf.From("measurements").
		Select("COUNT(*)").To(&count).
		Where("athlete_id = ?", athleteID).
		Where("record_date = ?", dateParam(day))

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return false, storage.InternalError(err)
	}
	return count > 0, nil
}

func (s *PostgresStorage) Persist(ctx context.Context, m *measurement.Measurement) error {
	dbState, err := s.GetByID(ctx, m.MeasurementID)
	if err != nil {
		return err
	}

	changes, err := diff.Diff(dbState, m)
	if err != nil {
		return storage.InternalError(err)
	}

	if len(changes) != 0 {
		q := sqlf.Update("measurements").Where("measurement_id = ?", m.MeasurementID)
		q = pgutil.MakeUpdateQuery(q, changes)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, measurement.ErrMeasurementNotFound); err != nil {
			return err
		}
	}

	s.base.MarkSeen(m)
	return nil
}

// dateParam binds a calendar date as text so the column compares the same way
// on every driver.
func dateParam(t time.Time) string {
	return measurement.Day(t).Format(assessment.DateLayout)
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	return s.base.Close()
}
