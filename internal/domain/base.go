package domain

import (
	"sync"
	"time"
)

type Event interface {
	Type() string
	PublishedAt() time.Time
}

// Stamp is embedded by events to carry the moment they happened.
type Stamp struct {
	At time.Time
}

func (s Stamp) PublishedAt() time.Time {
	return s.At
}

func Now() Stamp {
	return Stamp{At: time.Now().UTC()}
}

type NoCopy struct {
	sync.Mutex
}

type Aggregate struct {
	NoCopy
	events []Event
}

func (a *Aggregate) PopEvents() []Event {
	a.Lock()
	defer a.Unlock()
	events := a.events
	a.events = make([]Event, 0)
	return events
}

func (a *Aggregate) PushEvent(e Event) {
	a.Lock()
	defer a.Unlock()
	a.events = append(a.events, e)
}

// EventSource is anything that buffers domain events until commit.
type EventSource interface {
	PopEvents() []Event
}
