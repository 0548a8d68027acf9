// Package events provides the append-only journal of companion life.
// Front-ends render it as the "Steward's Archive"; stores may persist it
// for the legacy report of a companion that has passed on.
package events

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

// EventType defines the category of a journal event.
type EventType string

const (
	EventTypeVitalsTick         EventType = "VITALS_TICK"
	EventTypeFeed               EventType = "FEED"
	EventTypePurchase           EventType = "PURCHASE"
	EventTypeSleep              EventType = "SLEEP"
	EventTypeWake               EventType = "WAKE"
	EventTypeXPGain             EventType = "XP_GAIN"
	EventTypeEvolution          EventType = "EVOLUTION"
	EventTypeDeath              EventType = "DEATH"
	EventTypeChatTurn           EventType = "CHAT_TURN"
	EventTypeChatFallback       EventType = "CHAT_FALLBACK"
	EventTypeExpeditionLaunch   EventType = "EXPEDITION_LAUNCH"
	EventTypeExpeditionComplete EventType = "EXPEDITION_COMPLETE"
	EventTypeExpeditionCollect  EventType = "EXPEDITION_COLLECT"
	EventTypeArcadePlay         EventType = "ARCADE_PLAY"
)

// Event represents an immutable record of something that happened to
// the companion.
type Event struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Companion string      `json:"companion"` // Companion name
	Summary   string      `json:"summary"`   // Human-readable journal line
	Payload   interface{} `json:"payload,omitempty"`
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event Event) error
}

// Log is the in-memory append-only journal, optionally written through
// to a persister (e.g. the SQLite store). Write-through goes through a
// single writer goroutine so persisted rows keep append order.
type Log struct {
	mu        sync.RWMutex
	events    []Event
	persister Persister
	logger    *logger.Logger
	writes    chan Event
}

// NewLog creates a journal with an optional persister. Write failures
// are logged, never surfaced to the appending action.
func NewLog(persister Persister, log *logger.Logger) *Log {
	l := &Log{
		events:    make([]Event, 0),
		persister: persister,
		logger:    log,
	}
	if persister != nil {
		l.writes = make(chan Event, 256)
		go l.writeLoop()
	}
	return l
}

func (l *Log) writeLoop() {
	for e := range l.writes {
		if err := l.persister.Append(e); err != nil && l.logger != nil {
			l.logger.Error(fmt.Sprintf("journal write-through failed (event %s): %v", e.ID, err))
		}
	}
}

// Append adds a new event. Events are immutable once appended.
func (l *Log) Append(event Event) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	// Write through off the mutation path; the buffered queue keeps
	// journal durability from blocking a front-end action.
	if l.writes != nil {
		l.writes <- event
	}
}

// ByType returns all events of one category, oldest first.
func (l *Log) ByType(t EventType) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Event
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Recent returns up to n of the newest events, oldest first.
func (l *Log) Recent(n int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}
	out := make([]Event, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

// Replay returns the full journal for state reconstruction or display.
func (l *Log) Replay() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.events
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return time.Now().Format("20060102150405") + "-" + string(b)
}
