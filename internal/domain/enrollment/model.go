package enrollment

import (
	"errors"
	"github.com/burenotti/hoops_backend/internal/domain"
	"time"
)

var (
	ErrEnrollmentExists   = errors.New("athlete already enrolled in group")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

const (
	EventEnrolled    = "enrollment.created"
	EventActivated   = "enrollment.activated"
	EventDeactivated = "enrollment.deactivated"
)

type EnrollmentID string

// Enrollment links an athlete to a training group. Only active enrollments
// make an athlete eligible for new trials.
type Enrollment struct {
	domain.Aggregate `diff:"-"`
	EnrollmentID     EnrollmentID `diff:"-"`
	GroupID          string       `diff:"-"`
	AthleteID        int64        `diff:"-"`
	Active           bool         `diff:"active"`
	EnrolledAt       time.Time    `diff:"-"`
	UpdatedAt        time.Time    `diff:"updated_at"`
}

func New(id EnrollmentID, groupID string, athleteID int64) *Enrollment {
	now := time.Now().UTC()
	e := &Enrollment{
		EnrollmentID: id,
		GroupID:      groupID,
		AthleteID:    athleteID,
		Active:       true,
		EnrolledAt:   now,
		UpdatedAt:    now,
	}
	e.PushEvent(EnrolledEvent{
		Stamp:        domain.Stamp{At: now},
		EnrollmentID: id,
		GroupID:      groupID,
		AthleteID:    athleteID,
	})
	return e
}

// SetActive toggles the enrollment. Setting the current value is a no-op
// and emits nothing.
func (e *Enrollment) SetActive(active bool) {
	if e.Active == active {
		return
	}
	e.Active = active
	e.UpdatedAt = time.Now().UTC()

	ev := ToggledEvent{
		Stamp:        domain.Stamp{At: e.UpdatedAt},
		EnrollmentID: e.EnrollmentID,
		AthleteID:    e.AthleteID,
		Active:       active,
	}
	e.PushEvent(ev)
}

type EnrolledEvent struct {
	domain.Stamp
	EnrollmentID EnrollmentID
	GroupID      string
	AthleteID    int64
}

func (EnrolledEvent) Type() string {
	return EventEnrolled
}

type ToggledEvent struct {
	domain.Stamp
	EnrollmentID EnrollmentID
	AthleteID    int64
	Active       bool
}

func (e ToggledEvent) Type() string {
	if e.Active {
		return EventActivated
	}
	return EventDeactivated
}
