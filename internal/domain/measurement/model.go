package measurement

import (
	"errors"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"time"
)

var (
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrMeasurementExists   = errors.New("measurement already exists")
	ErrDuplicateRecord     = fmt.Errorf("%w: athlete already has a record for this date", ErrMeasurementExists)
	ErrImmutableChanged    = errors.New("athlete and record date cannot change")
)

const (
	EventRecorded = "measurement.recorded"
	EventUpdated  = "measurement.updated"
)

// Measurement is one anthropometric record of an athlete on a given day.
type Measurement struct {
	domain.Aggregate `diff:"-"`
	MeasurementID    string    `diff:"-"`
	AthleteID        int64     `diff:"-"`
	RecordDate       time.Time `diff:"-"`
	WeightKg         float64   `diff:"weight_kg"`
	HeightM          float64   `diff:"height_m"`
	SittingHeightM   float64   `diff:"sitting_height_m"`
	ArmSpanM         float64   `diff:"arm_span_m"`
	Notes            string    `diff:"notes"`
	RecordedBy       string    `diff:"-"`
	CreatedAt        time.Time `diff:"-"`
	UpdatedAt        time.Time `diff:"updated_at"`
}

func New(id string, a assessment.Anthropometry, recordedBy string) *Measurement {
	now := time.Now().UTC()
	m := &Measurement{
		MeasurementID:  id,
		AthleteID:      a.AthleteID,
		RecordDate:     Day(a.RecordDate),
		WeightKg:       a.WeightKg,
		HeightM:        a.HeightM,
		SittingHeightM: a.SittingHeightM,
		ArmSpanM:       a.ArmSpanM,
		Notes:          a.Notes,
		RecordedBy:     recordedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.PushEvent(RecordedEvent{
		Stamp:         domain.Stamp{At: now},
		MeasurementID: id,
		AthleteID:     a.AthleteID,
		RecordDate:    m.RecordDate,
	})
	return m
}

func (m *Measurement) Anthropometry() assessment.Anthropometry {
	return assessment.Anthropometry{
		AthleteID:      m.AthleteID,
		RecordDate:     m.RecordDate,
		WeightKg:       m.WeightKg,
		HeightM:        m.HeightM,
		SittingHeightM: m.SittingHeightM,
		ArmSpanM:       m.ArmSpanM,
		Notes:          m.Notes,
	}
}

// Update replaces the measured values. The athlete and the record date are
// fixed at creation.
func (m *Measurement) Update(a assessment.Anthropometry) error {
	if a.AthleteID != m.AthleteID || !Day(a.RecordDate).Equal(m.RecordDate) {
		return ErrImmutableChanged
	}
	a.RecordDate = m.RecordDate
	if m.Anthropometry() == a {
		return nil
	}

	m.WeightKg = a.WeightKg
	m.HeightM = a.HeightM
	m.SittingHeightM = a.SittingHeightM
	m.ArmSpanM = a.ArmSpanM
	m.Notes = a.Notes
	m.UpdatedAt = time.Now().UTC()

	m.PushEvent(UpdatedEvent{
		Stamp:         domain.Stamp{At: m.UpdatedAt},
		MeasurementID: m.MeasurementID,
		AthleteID:     m.AthleteID,
	})
	return nil
}

func (m *Measurement) Metrics(c *assessment.Constraints) assessment.Metrics {
	return c.Metrics(m.WeightKg, m.HeightM, m.SittingHeightM)
}

// Day drops the clock and the zone, keeping the calendar date the caller
// meant.
func Day(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

type RecordedEvent struct {
	domain.Stamp
	MeasurementID string
	AthleteID     int64
	RecordDate    time.Time
}

func (RecordedEvent) Type() string {
	return EventRecorded
}

type UpdatedEvent struct {
	domain.Stamp
	MeasurementID string
	AthleteID     int64
}

func (UpdatedEvent) Type() string {
	return EventUpdated
}
