package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

func newTestExpedition(t *testing.T, now time.Time) (*ExpeditionSystem, *Session, *events.Log) {
	t.Helper()
	session, _, log := newTestSession(t, now)
	path := filepath.Join(t.TempDir(), "expedition.json")
	sys := NewExpeditionSystem(path, session, log, logger.NewLogger())
	return sys, session, log
}

func TestLaunchSpendsEnergyAndJournals(t *testing.T) {
	sys, session, log := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if err := sys.Launch(ctx, "Asteroid Belt", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	if got := session.Companion().Energy; got != 9.0 {
		t.Errorf("energy after launch = %v, want 9.0", got)
	}
	st := sys.State()
	if !st.Active || st.Sector != "Asteroid Belt" {
		t.Errorf("state = %+v", st)
	}
	if !st.End.Equal(sessionT0.Add(60 * time.Second)) {
		t.Errorf("ETA = %v, want launch + 60s", st.End)
	}
	if got := log.ByType(events.EventTypeExpeditionLaunch); len(got) != 1 {
		t.Errorf("expected one EXPEDITION_LAUNCH event, got %d", len(got))
	}
}

func TestLaunchRejectsSecondExpedition(t *testing.T) {
	sys, _, _ := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if err := sys.Launch(ctx, "Asteroid Belt", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if err := sys.Launch(ctx, "Crab Nebula", sessionT0); !errors.Is(err, ErrExpeditionActive) {
		t.Errorf("second Launch = %v, want ErrExpeditionActive", err)
	}
}

func TestLaunchUnknownSector(t *testing.T) {
	sys, _, _ := newTestExpedition(t, sessionT0)

	if err := sys.Launch(context.Background(), "Kuiper Belt", sessionT0); !errors.Is(err, ErrUnknownSector) {
		t.Errorf("Launch = %v, want ErrUnknownSector", err)
	}
}

func TestLaunchNeedsEnergy(t *testing.T) {
	sys, session, _ := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if !session.SpendEnergy(ctx, 9.0, sessionT0) {
		t.Fatal("setup spend failed")
	}
	if err := sys.Launch(ctx, "Crab Nebula", sessionT0); !errors.Is(err, ErrNotEnoughEnergy) {
		t.Errorf("Launch = %v, want ErrNotEnoughEnergy", err)
	}
}

func TestCollectBeforeArrival(t *testing.T) {
	sys, _, _ := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if _, _, _, err := sys.Collect(ctx, sessionT0); !errors.Is(err, ErrNoExpedition) {
		t.Errorf("Collect with nothing underway = %v, want ErrNoExpedition", err)
	}

	if err := sys.Launch(ctx, "Asteroid Belt", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	sys.StageCompletionIfDue(sessionT0.Add(30 * time.Second))
	if _, _, _, err := sys.Collect(ctx, sessionT0.Add(30*time.Second)); !errors.Is(err, ErrExpeditionUnderway) {
		t.Errorf("early Collect = %v, want ErrExpeditionUnderway", err)
	}
}

func TestStageCompletionIsIdempotent(t *testing.T) {
	sys, _, log := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if err := sys.Launch(ctx, "Asteroid Belt", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	arrived := sessionT0.Add(90 * time.Second)
	sys.StageCompletionIfDue(arrived)
	sys.StageCompletionIfDue(arrived.Add(time.Second))
	sys.StageCompletionIfDue(arrived.Add(2 * time.Second))

	if got := log.ByType(events.EventTypeExpeditionComplete); len(got) != 1 {
		t.Errorf("expected one EXPEDITION_COMPLETE event, got %d", len(got))
	}
	st := sys.State()
	if !st.Complete || st.PendingXP != 20 {
		t.Errorf("staged state = %+v", st)
	}
}

func TestCollectAppliesRewardsOnce(t *testing.T) {
	sys, session, _ := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if err := sys.Launch(ctx, "Crab Nebula", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	arrived := sessionT0.Add(4 * time.Minute)
	sys.StageCompletionIfDue(arrived)

	xpBefore := session.Companion().XP
	sector, found, xp, err := sys.Collect(ctx, arrived)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if sector != "Crab Nebula" || xp != 80 {
		t.Errorf("Collect = (%q, %q, %v)", sector, found, xp)
	}
	if got := session.Companion().XP; got != xpBefore+80 {
		t.Errorf("XP = %v, want %v", got, xpBefore+80)
	}
	// A Crab Nebula find can only be a Star Mote.
	if found != "" && found != "Star Mote" {
		t.Errorf("found = %q, want Star Mote or nothing", found)
	}

	// State resets; a second dock has nothing to give.
	if _, _, _, err := sys.Collect(ctx, arrived); !errors.Is(err, ErrNoExpedition) {
		t.Errorf("second Collect = %v, want ErrNoExpedition", err)
	}
	if st := sys.State(); st.Active {
		t.Errorf("state should reset after collect, got %+v", st)
	}
}

func TestRemaining(t *testing.T) {
	sys, _, _ := newTestExpedition(t, sessionT0)
	ctx := context.Background()

	if got := sys.Remaining(sessionT0); got != 0 {
		t.Errorf("idle Remaining = %v, want 0", got)
	}
	if err := sys.Launch(ctx, "Stellar Nursery", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if got := sys.Remaining(sessionT0.Add(30 * time.Second)); got != 90*time.Second {
		t.Errorf("Remaining = %v, want 90s", got)
	}
	if got := sys.Remaining(sessionT0.Add(5 * time.Minute)); got != 0 {
		t.Errorf("Remaining past arrival = %v, want 0", got)
	}
}

func TestExpeditionStateSurvivesRestart(t *testing.T) {
	session, _, log := newTestSession(t, sessionT0)
	path := filepath.Join(t.TempDir(), "expedition.json")
	l := logger.NewLogger()
	ctx := context.Background()

	first := NewExpeditionSystem(path, session, log, l)
	if err := first.Launch(ctx, "Stellar Nursery", sessionT0); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	second := NewExpeditionSystem(path, session, log, l)
	st := second.State()
	if !st.Active || st.Sector != "Stellar Nursery" {
		t.Errorf("reloaded state = %+v", st)
	}
}
