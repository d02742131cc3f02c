package trial

import (
	"errors"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/burenotti/hoops_backend/internal/domain/assessment"
	"time"
)

var (
	ErrTrialNotFound      = errors.New("trial not found")
	ErrTrialExists        = errors.New("trial already exists")
	ErrImmutableChanged   = errors.New("athlete and trial type cannot change")
	ErrAthleteNotEnrolled = errors.New("athlete has no active enrollment")
)

const (
	EventRecorded  = "trial.recorded"
	EventUpdated   = "trial.updated"
	EventActiveSet = "trial.active_changed"
)

// Trial is one physical test result. Inactive trials stay stored but are
// left out of rankings and summaries.
type Trial struct {
	domain.Aggregate `diff:"-"`
	TrialID          string               `diff:"-"`
	AthleteID        int64                `diff:"-"`
	Type             assessment.TrialType `diff:"-"`
	Result           float64              `diff:"result"`
	Notes            string               `diff:"notes"`
	Active           bool                 `diff:"active"`
	RecordedBy       string               `diff:"-"`
	CreatedAt        time.Time            `diff:"-"`
	UpdatedAt        time.Time            `diff:"updated_at"`
}

func New(id string, t assessment.Trial, recordedBy string) *Trial {
	now := time.Now().UTC()
	tr := &Trial{
		TrialID:    id,
		AthleteID:  t.AthleteID,
		Type:       t.Type,
		Result:     t.Result,
		Notes:      t.Notes,
		Active:     t.Active,
		RecordedBy: recordedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	tr.PushEvent(RecordedEvent{
		Stamp:     domain.Stamp{At: now},
		TrialID:   id,
		AthleteID: t.AthleteID,
		TrialType: t.Type,
		Result:    t.Result,
	})
	return tr
}

func (t *Trial) Spec() assessment.Trial {
	return assessment.Trial{
		AthleteID: t.AthleteID,
		Type:      t.Type,
		Result:    t.Result,
		Notes:     t.Notes,
		Active:    t.Active,
	}
}

func (t *Trial) Update(s assessment.Trial) error {
	if s.AthleteID != t.AthleteID || s.Type != t.Type {
		return ErrImmutableChanged
	}
	if t.Spec() == s {
		return nil
	}
	activeChanged := s.Active != t.Active

	t.Result = s.Result
	t.Notes = s.Notes
	t.Active = s.Active
	t.UpdatedAt = time.Now().UTC()

	t.PushEvent(UpdatedEvent{
		Stamp:   domain.Stamp{At: t.UpdatedAt},
		TrialID: t.TrialID,
	})
	if activeChanged {
		t.pushActive()
	}
	return nil
}

func (t *Trial) SetActive(active bool) {
	if t.Active == active {
		return
	}
	t.Active = active
	t.UpdatedAt = time.Now().UTC()
	t.pushActive()
}

func (t *Trial) pushActive() {
	t.PushEvent(ActiveChangedEvent{
		Stamp:   domain.Stamp{At: t.UpdatedAt},
		TrialID: t.TrialID,
		Active:  t.Active,
	})
}

type RecordedEvent struct {
	domain.Stamp
	TrialID   string
	AthleteID int64
	TrialType assessment.TrialType
	Result    float64
}

func (RecordedEvent) Type() string {
	return EventRecorded
}

type UpdatedEvent struct {
	domain.Stamp
	TrialID string
}

func (UpdatedEvent) Type() string {
	return EventUpdated
}

type ActiveChangedEvent struct {
	domain.Stamp
	TrialID string
	Active  bool
}

func (ActiveChangedEvent) Type() string {
	return EventActiveSet
}
