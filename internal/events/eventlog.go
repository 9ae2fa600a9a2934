// Package events provides the append-only record of notable simulation events.
// The engine appends synchronously (pure in-memory, never blocking on I/O);
// the websocket hub and the persistence layer consume the log from outside.
package events

import (
	"sync"
	"time"
)

// EventType defines the category of a simulation event.
type EventType string

const (
	EventTypeEpisodeStart   EventType = "EPISODE_START"
	EventTypeEpisodeEnd     EventType = "EPISODE_END"
	EventTypeShare          EventType = "SHARE"
	EventTypeSteal          EventType = "STEAL"
	EventTypeAllianceFormed EventType = "ALLIANCE_FORMED"
	EventTypeAllianceJoined EventType = "ALLIANCE_JOINED"
	EventTypeSignalHelp     EventType = "SIGNAL_HELP"
)

// SimEvent is an immutable record of something that happened during a step.
type SimEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   int         `json:"actor_id"`
	TargetID  int         `json:"target_id"` // -1 when not applicable
	Step      int         `json:"step"`
	Episode   int         `json:"episode"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event SimEvent) error
}

// Log is the in-memory append-only log of simulation events.
type Log struct {
	mu        sync.RWMutex
	events    []SimEvent
	persister Persister
}

// NewLog creates a new event log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		events:    make([]SimEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (l *Log) Append(event SimEvent) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	if l.persister != nil {
		// Write through to persistent storage off the caller's goroutine so
		// the simulation step never waits on the database.
		go func(e SimEvent) {
			_ = l.persister.Append(e)
		}(event)
	}
}

// Len returns the number of events recorded so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Since returns all events recorded after the given offset. Pollers track
// their own offset and call this periodically.
func (l *Log) Since(offset int) []SimEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if offset >= len(l.events) {
		return nil
	}
	out := make([]SimEvent, len(l.events)-offset)
	copy(out, l.events[offset:])
	return out
}

// ByType returns all recorded events of a given type.
func (l *Log) ByType(t EventType) []SimEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []SimEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}
