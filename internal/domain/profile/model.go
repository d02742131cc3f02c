package profile

import (
	"errors"
	"github.com/burenotti/hoops_backend/internal/domain"
	"strings"
	"time"
)

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrAthleteExists   = errors.New("athlete already exists")
	ErrStudentCodeUsed = errors.New("student code already registered")
)

const (
	TypeCoach   = "coach"
	TypeLiaison = "liaison"
)

const EventAthleteRegistered = "athlete.registered"

// Profile is attached to a user account: the coach running groups or the
// student liaison helping record assessments.
type Profile interface {
	Type() string
	ID() string
}

type Coach struct {
	domain.Aggregate
	UserID          string
	FirstName       string
	LastName        string
	YearsExperience int
	Bio             string
}

func NewCoach(userID, firstName, lastName string, yearsExperience int, bio string) *Coach {
	return &Coach{
		UserID:          userID,
		FirstName:       firstName,
		LastName:        lastName,
		YearsExperience: yearsExperience,
		Bio:             bio,
	}
}

func (c *Coach) ID() string {
	return c.UserID
}

func (*Coach) Type() string {
	return TypeCoach
}

type Liaison struct {
	domain.Aggregate
	UserID      string
	FirstName   string
	LastName    string
	StudentCode string
}

func NewLiaison(userID, firstName, lastName, studentCode string) *Liaison {
	return &Liaison{
		UserID:      userID,
		FirstName:   firstName,
		LastName:    lastName,
		StudentCode: NormalizeStudentCode(studentCode),
	}
}

func (l *Liaison) ID() string {
	return l.UserID
}

func (*Liaison) Type() string {
	return TypeLiaison
}

// Athlete is a club member being assessed. Athletes have no login, so they
// are keyed by a numeric id rather than a user id.
type Athlete struct {
	domain.Aggregate
	AthleteID   int64
	FirstName   string
	LastName    string
	BirthDate   *time.Time
	StudentCode string
	CreatedAt   time.Time
}

func NewAthlete(firstName, lastName string, birthDate *time.Time, studentCode string) *Athlete {
	a := &Athlete{
		FirstName:   firstName,
		LastName:    lastName,
		BirthDate:   birthDate,
		StudentCode: NormalizeStudentCode(studentCode),
		CreatedAt:   time.Now().UTC(),
	}
	return a
}

// Registered is called once storage has assigned the athlete id.
func (a *Athlete) Registered(id int64) {
	a.AthleteID = id
	a.PushEvent(AthleteRegisteredEvent{
		Stamp:     domain.Stamp{At: a.CreatedAt},
		AthleteID: id,
		FullName:  a.FullName(),
	})
}

func (a *Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func NormalizeStudentCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type AthleteRegisteredEvent struct {
	domain.Stamp
	AthleteID int64
	FullName  string
}

func (AthleteRegisteredEvent) Type() string {
	return EventAthleteRegistered
}
