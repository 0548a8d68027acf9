package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nebulazenith/sanctuary/internal/events"
)

// Signal is one throw in the arcade's signal duel.
type Signal string

const (
	SignalComet    Signal = "Comet"
	SignalPaper    Signal = "Paper"
	SignalScissors Signal = "Scissors"
)

var signals = []Signal{SignalComet, SignalPaper, SignalScissors}

// beats reports whether a defeats b. Comet crushes Scissors, Paper
// wraps Comet, Scissors cut Paper.
func beats(a, b Signal) bool {
	return (a == SignalComet && b == SignalScissors) ||
		(a == SignalPaper && b == SignalComet) ||
		(a == SignalScissors && b == SignalPaper)
}

// OutcomeKind classifies an arcade round for the front-end.
type OutcomeKind string

const (
	OutcomeWin  OutcomeKind = "success"
	OutcomeLoss OutcomeKind = "error"
	OutcomeTie  OutcomeKind = "info"
	OutcomeHint OutcomeKind = "warning"
)

// Outcome is the result of one arcade round.
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	XPGained float64
	Opponent Signal // set for signal duels only
}

// ArcadeSystem hosts the two mini-games. XP rewards flow through the
// session so evolution checks and persistence happen on every win.
type ArcadeSystem struct {
	mu          sync.Mutex
	session     *Session
	eventLog    *events.Log
	pulseTarget int // 0 when no round is open
}

func NewArcadeSystem(session *Session, eventLog *events.Log) *ArcadeSystem {
	return &ArcadeSystem{session: session, eventLog: eventLog}
}

// PlaySignalDuel runs one round against the companion's random throw.
func (a *ArcadeSystem) PlaySignalDuel(ctx context.Context, choice Signal, now time.Time) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	opponent := signals[rand.Intn(len(signals))]

	var out Outcome
	switch {
	case choice == opponent:
		out = Outcome{Kind: OutcomeTie, Text: fmt.Sprintf("Tie! Both chose %s.", choice), Opponent: opponent}
	case beats(choice, opponent):
		gain := float64(20 + rand.Intn(61)) // 20-80
		a.session.GainXP(ctx, gain, "arcade", now)
		out = Outcome{Kind: OutcomeWin, Text: fmt.Sprintf("Success! +%.0f Wisdom", gain), XPGained: gain, Opponent: opponent}
	default:
		out = Outcome{Kind: OutcomeLoss, Text: fmt.Sprintf("%s won! They chose %s.", a.session.Name(), opponent), Opponent: opponent}
	}

	a.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      events.EventTypeArcadePlay,
		Companion: a.session.Name(),
		Summary:   fmt.Sprintf("Signal duel: steward %s vs %s (%s)", choice, opponent, out.Kind),
		Payload:   map[string]interface{}{"game": "signal_duel", "choice": string(choice), "opponent": string(opponent), "xp": out.XPGained},
	})
	return out
}

// PlayNumberPulse guesses the hidden frequency in [1,10]. The target
// persists across wrong guesses and resets on a lock.
func (a *ArcadeSystem) PlayNumberPulse(ctx context.Context, guess int, now time.Time) Outcome {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pulseTarget == 0 {
		a.pulseTarget = 1 + rand.Intn(10)
	}

	var out Outcome
	switch {
	case guess == a.pulseTarget:
		gain := float64(40 + rand.Intn(41)) // 40-80
		a.session.GainXP(ctx, gain, "arcade", now)
		a.pulseTarget = 0
		out = Outcome{Kind: OutcomeWin, Text: fmt.Sprintf("Locked! +%.0f Wisdom", gain), XPGained: gain}
	case guess < a.pulseTarget:
		out = Outcome{Kind: OutcomeHint, Text: "Too low!"}
	default:
		out = Outcome{Kind: OutcomeHint, Text: "Too high!"}
	}

	a.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      events.EventTypeArcadePlay,
		Companion: a.session.Name(),
		Summary:   fmt.Sprintf("Number pulse: guess %d (%s)", guess, out.Kind),
		Payload:   map[string]interface{}{"game": "number_pulse", "guess": guess, "xp": out.XPGained},
	})
	return out
}
