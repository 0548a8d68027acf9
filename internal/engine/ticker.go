package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

// TickRate defines how often vitals are integrated in the background.
// Decay itself is wall-clock based; ticks only bound staleness.
const TickRate = 30 * time.Second

// Ticker drives the vitals heartbeat for a session.
type Ticker struct {
	session    *Session
	expedition *ExpeditionSystem
	eventLog   *events.Log
	logger     *logger.Logger
	tickNumber int64
	stopChan   chan struct{}
}

// NewTicker creates the heartbeat. expedition may be nil.
func NewTicker(session *Session, expedition *ExpeditionSystem, eventLog *events.Log, log *logger.Logger) *Ticker {
	return &Ticker{
		session:    session,
		expedition: expedition,
		eventLog:   eventLog,
		logger:     log,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the heartbeat loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("Sanctuary heartbeat started")

	ticker := time.NewTicker(TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Sanctuary heartbeat stopped by context")
			return
		case <-t.stopChan:
			t.logger.Info("Sanctuary heartbeat stopped")
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// Stop gracefully stops the heartbeat.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

func (t *Ticker) tick(ctx context.Context) {
	t.tickNumber++
	now := time.Now()

	t.session.Tick(ctx, now)
	if t.expedition != nil {
		t.expedition.StageCompletionIfDue(now)
	}

	// Journal only every 10th tick; per-tick entries would drown the
	// steward's archive.
	if t.tickNumber%10 == 0 {
		snap := t.session.Companion()
		t.eventLog.Append(events.Event{
			ID:        events.GenerateEventID(),
			Timestamp: now,
			Type:      events.EventTypeVitalsTick,
			Companion: snap.Name,
			Summary:   fmt.Sprintf("Vitals: hunger %.1f, happiness %.1f, energy %.1f", snap.Hunger, snap.Happiness, snap.Energy),
			Payload: map[string]float64{
				"hunger":    snap.Hunger,
				"happiness": snap.Happiness,
				"energy":    snap.Energy,
			},
		})
	}
}
