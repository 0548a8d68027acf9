package events

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

func makeEvent(t EventType, summary string) Event {
	return Event{
		ID:        GenerateEventID(),
		Timestamp: time.Now(),
		Type:      t,
		Companion: "Nebula",
		Summary:   summary,
	}
}

func TestAppendAndReplayPreservesOrder(t *testing.T) {
	log := NewLog(nil, logger.NewLogger())

	log.Append(makeEvent(EventTypeFeed, "first"))
	log.Append(makeEvent(EventTypeSleep, "second"))
	log.Append(makeEvent(EventTypeWake, "third"))

	events := log.Replay()
	if len(events) != 3 {
		t.Fatalf("Replay returned %d events, want 3", len(events))
	}
	if events[0].Summary != "first" || events[2].Summary != "third" {
		t.Errorf("events out of order: %q ... %q", events[0].Summary, events[2].Summary)
	}
}

func TestByTypeFilters(t *testing.T) {
	log := NewLog(nil, logger.NewLogger())

	log.Append(makeEvent(EventTypeFeed, "fed an Apple"))
	log.Append(makeEvent(EventTypeVitalsTick, "tick"))
	log.Append(makeEvent(EventTypeFeed, "fed a Berry"))

	feeds := log.ByType(EventTypeFeed)
	if len(feeds) != 2 {
		t.Fatalf("ByType(FEED) returned %d events, want 2", len(feeds))
	}
	if feeds[0].Summary != "fed an Apple" {
		t.Errorf("ByType should keep oldest-first order, got %q first", feeds[0].Summary)
	}

	if got := log.ByType(EventTypeDeath); len(got) != 0 {
		t.Errorf("ByType(DEATH) returned %d events, want 0", len(got))
	}
}

func TestRecentReturnsNewestOldestFirst(t *testing.T) {
	log := NewLog(nil, logger.NewLogger())
	for _, s := range []string{"a", "b", "c", "d"} {
		log.Append(makeEvent(EventTypeXPGain, s))
	}

	recent := log.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d events, want 2", len(recent))
	}
	if recent[0].Summary != "c" || recent[1].Summary != "d" {
		t.Errorf("Recent(2) = [%q, %q], want [c, d]", recent[0].Summary, recent[1].Summary)
	}

	// Out-of-range n returns the whole journal.
	if got := log.Recent(100); len(got) != 4 {
		t.Errorf("Recent(100) returned %d events, want 4", len(got))
	}
	if got := log.Recent(0); len(got) != 4 {
		t.Errorf("Recent(0) returned %d events, want 4", len(got))
	}
}

type recordingPersister struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPersister) Append(e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestAppendWritesThroughToPersister(t *testing.T) {
	persister := &recordingPersister{}
	log := NewLog(persister, logger.NewLogger())

	log.Append(makeEvent(EventTypeEvolution, "evolved"))

	// Write-through is async; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for persister.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if persister.count() != 1 {
		t.Fatalf("persister received %d events, want 1", persister.count())
	}
}

func TestWriteThroughPreservesAppendOrder(t *testing.T) {
	persister := &recordingPersister{}
	log := NewLog(persister, logger.NewLogger())

	total := 50
	for i := 0; i < total; i++ {
		log.Append(makeEvent(EventTypeXPGain, fmt.Sprintf("event-%03d", i)))
	}

	deadline := time.Now().Add(2 * time.Second)
	for persister.count() < total && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if persister.count() != total {
		t.Fatalf("persister received %d events, want %d", persister.count(), total)
	}

	persister.mu.Lock()
	defer persister.mu.Unlock()
	for i, e := range persister.events {
		if want := fmt.Sprintf("event-%03d", i); e.Summary != want {
			t.Fatalf("persisted event %d is %q, want %q", i, e.Summary, want)
		}
	}
}

type failingPersister struct {
	mu       sync.Mutex
	attempts int
}

func (p *failingPersister) Append(e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	return errors.New("disk full")
}

func (p *failingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func TestWriteThroughFailureDoesNotBlockAppend(t *testing.T) {
	persister := &failingPersister{}
	log := NewLog(persister, logger.NewLogger())

	for i := 0; i < 10; i++ {
		log.Append(makeEvent(EventTypeFeed, "fed"))
	}

	// All appends land in memory regardless of the persister.
	if got := len(log.Replay()); got != 10 {
		t.Fatalf("journal has %d events, want 10", got)
	}
	deadline := time.Now().Add(2 * time.Second)
	for persister.count() < 10 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if persister.count() != 10 {
		t.Errorf("writer attempted %d writes, want 10", persister.count())
	}
}

func TestGenerateEventIDFormat(t *testing.T) {
	id := GenerateEventID()

	parts := strings.Split(id, "-")
	if len(parts) != 2 {
		t.Fatalf("event id %q should have a timestamp and a suffix", id)
	}
	if len(parts[0]) != 14 {
		t.Errorf("timestamp part %q has length %d, want 14", parts[0], len(parts[0]))
	}
	if len(parts[1]) != 6 {
		t.Errorf("suffix part %q has length %d, want 6", parts[1], len(parts[1]))
	}
}
