package group

import (
	"errors"
	"github.com/burenotti/hoops_backend/internal/domain"
	"time"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupExists   = errors.New("group already exists")
)

const EventCreated = "group.created"

type GroupID string
type CoachID string
type LiaisonID string

// Group is a training squad run by one coach, optionally helped by a
// student liaison.
type Group struct {
	domain.Aggregate
	GroupID     GroupID    `diff:"-"`
	Name        string     `diff:"name"`
	Description string     `diff:"description"`
	Season      string     `diff:"season"`
	CoachID     CoachID    `diff:"-"`
	LiaisonID   *LiaisonID `diff:"liaison_id"`
	CreatedAt   time.Time  `diff:"-"`
	UpdatedAt   time.Time  `diff:"updated_at"`
}

func New(groupID GroupID, coachID CoachID, name, description, season string) *Group {
	now := time.Now().UTC()
	g := &Group{
		GroupID:     groupID,
		Name:        name,
		Description: description,
		Season:      season,
		CoachID:     coachID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	g.PushEvent(CreatedEvent{
		Stamp:   domain.Stamp{At: now},
		GroupID: groupID,
		CoachID: coachID,
	})
	return g
}

func (g *Group) AssignLiaison(id LiaisonID) {
	g.LiaisonID = &id
	g.UpdatedAt = time.Now().UTC()
}

// Member is an athlete enrolled in a group.
type Member struct {
	AthleteID   int64
	FirstName   string
	LastName    string
	StudentCode string
	Active      bool
}

type CreatedEvent struct {
	domain.Stamp
	GroupID GroupID
	CoachID CoachID
}

func (CreatedEvent) Type() string {
	return EventCreated
}
