package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

func TestBeats(t *testing.T) {
	tests := []struct {
		a, b Signal
		want bool
	}{
		{SignalComet, SignalScissors, true},
		{SignalPaper, SignalComet, true},
		{SignalScissors, SignalPaper, true},
		{SignalScissors, SignalComet, false},
		{SignalComet, SignalPaper, false},
		{SignalPaper, SignalScissors, false},
		{SignalComet, SignalComet, false},
	}
	for _, tt := range tests {
		if got := beats(tt.a, tt.b); got != tt.want {
			t.Errorf("beats(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSignalDuelOutcomesAreConsistent(t *testing.T) {
	session, _, log := newTestSession(t, sessionT0)
	arcade := NewArcadeSystem(session, log)
	ctx := context.Background()

	rounds := 60
	for i := 0; i < rounds; i++ {
		out := arcade.PlaySignalDuel(ctx, SignalComet, sessionT0)

		switch {
		case out.Opponent == SignalComet:
			if out.Kind != OutcomeTie || out.XPGained != 0 {
				t.Errorf("tie round misreported: %+v", out)
			}
		case beats(SignalComet, out.Opponent):
			if out.Kind != OutcomeWin {
				t.Errorf("winning round misreported: %+v", out)
			}
			if out.XPGained < 20 || out.XPGained > 80 {
				t.Errorf("win XP %v outside [20, 80]", out.XPGained)
			}
		default:
			if out.Kind != OutcomeLoss || out.XPGained != 0 {
				t.Errorf("losing round misreported: %+v", out)
			}
		}
	}

	if got := log.ByType(events.EventTypeArcadePlay); len(got) != rounds {
		t.Errorf("journal has %d arcade events, want %d", len(got), rounds)
	}
}

func TestSignalDuelLossNamesCompanion(t *testing.T) {
	log := events.NewLog(nil, logger.NewLogger())
	session, err := LoadOrCreate(context.Background(), "Vega", newMemStore(), log, logger.NewLogger(), sessionT0)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	arcade := NewArcadeSystem(session, log)
	ctx := context.Background()

	// 200 rounds of the same throw all but guarantee at least one loss.
	for i := 0; i < 200; i++ {
		out := arcade.PlaySignalDuel(ctx, SignalComet, sessionT0)
		if out.Kind != OutcomeLoss {
			continue
		}
		if !strings.Contains(out.Text, "Vega") {
			t.Fatalf("loss text = %q, want the companion's name in it", out.Text)
		}
		return
	}
	t.Fatal("no losing round in 200 duels")
}

func TestNumberPulseHintsAndLock(t *testing.T) {
	session, _, log := newTestSession(t, sessionT0)
	arcade := NewArcadeSystem(session, log)
	ctx := context.Background()

	// The target persists across wrong guesses, so walking 1..10 must
	// lock exactly once within ten guesses.
	var won Outcome
	locks := 0
	for guess := 1; guess <= 10; guess++ {
		out := arcade.PlayNumberPulse(ctx, guess, sessionT0)
		switch out.Kind {
		case OutcomeWin:
			locks++
			won = out
		case OutcomeHint:
			if !strings.Contains(out.Text, "Too low") && !strings.Contains(out.Text, "Too high") {
				t.Errorf("hint text = %q", out.Text)
			}
		default:
			t.Errorf("unexpected outcome kind %q", out.Kind)
		}
	}

	if locks != 1 {
		t.Fatalf("walking every frequency locked %d times, want exactly 1", locks)
	}
	if won.XPGained < 40 || won.XPGained > 80 {
		t.Errorf("lock XP %v outside [40, 80]", won.XPGained)
	}
	if got := session.Companion().XP; got != won.XPGained {
		t.Errorf("session XP = %v, want %v", got, won.XPGained)
	}
}

func TestNumberPulseHintDirection(t *testing.T) {
	session, _, log := newTestSession(t, sessionT0)
	arcade := NewArcadeSystem(session, log)
	ctx := context.Background()

	// Guessing below the floor can never lock and always reads too low.
	out := arcade.PlayNumberPulse(ctx, 0, sessionT0)
	if out.Kind != OutcomeHint || !strings.Contains(out.Text, "Too low") {
		t.Errorf("guess below range = %+v, want a too-low hint", out)
	}
	out = arcade.PlayNumberPulse(ctx, 11, sessionT0)
	if out.Kind != OutcomeHint || !strings.Contains(out.Text, "Too high") {
		t.Errorf("guess above range = %+v, want a too-high hint", out)
	}
}

func TestNumberPulseTargetResetsAfterLock(t *testing.T) {
	session, _, log := newTestSession(t, sessionT0)
	arcade := NewArcadeSystem(session, log)
	ctx := context.Background()
	at := sessionT0

	winRound := func() float64 {
		for guess := 1; guess <= 10; guess++ {
			if out := arcade.PlayNumberPulse(ctx, guess, at); out.Kind == OutcomeWin {
				return out.XPGained
			}
		}
		t.Fatal("round never locked")
		return 0
	}

	first := winRound()
	at = at.Add(time.Minute)
	second := winRound()

	if got := session.Companion().XP; got != first+second {
		t.Errorf("session XP = %v, want %v", got, first+second)
	}
}
