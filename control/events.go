// control/events.go
// Author: momentics <momentics@gmail.com>
//
// Bounded history of thread lifecycle events for diagnostics.

package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/eapache/queue"
)

// Event kinds.
const (
	EventCreated  = "created"
	EventExited   = "exited"
	EventJoined   = "joined"
	EventDetached = "detached"
	EventCanceled = "canceled"
)

// Event is one lifecycle transition.
type Event struct {
	At      time.Time
	Backend string
	Thread  uint64
	Kind    string
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s thread(%d) %s", e.At.Format(time.RFC3339Nano), e.Backend, e.Thread, e.Kind)
}

// EventLog keeps the most recent events, oldest dropped first.
type EventLog struct {
	mu  sync.Mutex
	q   *queue.Queue
	max int
}

// NewEventLog creates a log holding at most max events. max <= 0 disables
// recording.
func NewEventLog(max int) *EventLog {
	return &EventLog{q: queue.New(), max: max}
}

// Record appends ev, evicting the oldest entry when full.
func (l *EventLog) Record(ev Event) {
	if l == nil || l.max <= 0 {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.q.Length() >= l.max {
		l.q.Remove()
	}
	l.q.Add(ev)
}

// Resize changes the bound, evicting as needed.
func (l *EventLog) Resize(max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.max = max
	for l.q.Length() > 0 && l.q.Length() > max {
		l.q.Remove()
	}
}

// Len returns the number of stored events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.q.Length()
}

// Snapshot returns stored events, oldest first.
func (l *EventLog) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, l.q.Length())
	for i := range out {
		out[i] = l.q.Get(i).(Event)
	}
	return out
}
