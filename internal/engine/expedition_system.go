package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/nebulazenith/sanctuary/internal/domain/item"
	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

// Sector describes one expedition destination.
type Sector struct {
	Name       string
	Duration   time.Duration
	EnergyCost float64
	XPReward   float64
	Loot       []item.ID
}

// Sectors lists the reachable destinations, nearest first.
var Sectors = []Sector{
	{Name: "Asteroid Belt", Duration: 60 * time.Second, EnergyCost: 1.0, XPReward: 20, Loot: []item.ID{item.Apple, item.Berry}},
	{Name: "Stellar Nursery", Duration: 120 * time.Second, EnergyCost: 1.5, XPReward: 40, Loot: []item.ID{item.Coffee, item.MagicCookie}},
	{Name: "Crab Nebula", Duration: 180 * time.Second, EnergyCost: 2.0, XPReward: 80, Loot: []item.ID{item.StarMote}},
}

// itemFindChance is the probability a completed expedition carries loot.
const itemFindChance = 0.7

// SectorByName looks up a destination.
func SectorByName(name string) (Sector, bool) {
	for _, s := range Sectors {
		if s.Name == name {
			return s, true
		}
	}
	return Sector{}, false
}

// Expedition launch/collect failures.
var (
	ErrExpeditionActive   = errors.New("an expedition is already underway")
	ErrUnknownSector      = errors.New("unknown sector")
	ErrNotEnoughEnergy    = errors.New("not enough energy for this expedition")
	ErrNoExpedition       = errors.New("no expedition underway")
	ErrExpeditionUnderway = errors.New("expedition still traveling")
	ErrRewardsCollected   = errors.New("rewards already collected")
)

// ExpeditionState is the persisted progress record. Rewards are staged
// on completion and applied only when the steward docks.
type ExpeditionState struct {
	Active      bool      `json:"exp_active"`
	Sector      string    `json:"exp_sector"`
	End         time.Time `json:"exp_end"`
	Complete    bool      `json:"exp_complete"`
	PendingItem item.ID   `json:"exp_pending_item,omitempty"`
	PendingXP   float64   `json:"exp_pending_xp"`
	Collected   bool      `json:"exp_collected"`
	ID          string    `json:"exp_id,omitempty"`
}

// ExpeditionSystem manages launches, completion staging and docking.
// State survives restarts via a small JSON file.
type ExpeditionSystem struct {
	mu       sync.Mutex
	state    ExpeditionState
	path     string
	session  *Session
	eventLog *events.Log
	logger   *logger.Logger
}

func NewExpeditionSystem(path string, session *Session, eventLog *events.Log, log *logger.Logger) *ExpeditionSystem {
	sys := &ExpeditionSystem{
		path:     path,
		session:  session,
		eventLog: eventLog,
		logger:   log,
	}
	sys.load()
	return sys
}

func (e *ExpeditionSystem) load() {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return
	}
	var st ExpeditionState
	if err := json.Unmarshal(data, &st); err != nil {
		e.logger.Error(fmt.Sprintf("failed to load expedition state: %v", err))
		return
	}
	e.state = st
}

func (e *ExpeditionSystem) save() {
	data, err := json.Marshal(e.state)
	if err != nil {
		e.logger.Error(fmt.Sprintf("failed to marshal expedition state: %v", err))
		return
	}
	if err := os.WriteFile(e.path, data, 0644); err != nil {
		e.logger.Error(fmt.Sprintf("failed to save expedition state: %v", err))
	}
}

// State returns a copy of the current expedition progress.
func (e *ExpeditionSystem) State() ExpeditionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Launch spends the sector's energy cost and starts the journey.
func (e *ExpeditionSystem) Launch(ctx context.Context, sectorName string, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Active {
		return ErrExpeditionActive
	}
	sector, ok := SectorByName(sectorName)
	if !ok {
		return ErrUnknownSector
	}
	if !e.session.SpendEnergy(ctx, sector.EnergyCost, now) {
		return ErrNotEnoughEnergy
	}

	e.state = ExpeditionState{
		Active: true,
		Sector: sector.Name,
		End:    now.Add(sector.Duration),
		ID:     events.GenerateEventID(),
	}
	e.save()

	e.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      events.EventTypeExpeditionLaunch,
		Companion: e.session.Name(),
		Summary:   fmt.Sprintf("Launched expedition to %s (ETA %s).", sector.Name, sector.Duration),
		Payload:   map[string]interface{}{"sector": sector.Name, "energy": sector.EnergyCost},
	})
	return nil
}

// StageCompletionIfDue rolls rewards once travel time has elapsed.
// Rewards stay pending until the steward docks; staging is idempotent.
func (e *ExpeditionSystem) StageCompletionIfDue(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active || e.state.Complete || now.Before(e.state.End) {
		return
	}

	sector, ok := SectorByName(e.state.Sector)
	if !ok {
		sector = Sectors[0]
	}

	var found item.ID
	if rand.Float64() < itemFindChance {
		found = sector.Loot[rand.Intn(len(sector.Loot))]
	}

	e.state.Complete = true
	e.state.PendingItem = found
	e.state.PendingXP = sector.XPReward
	e.state.Collected = false
	e.save()

	foundStr := "None"
	if found != "" {
		foundStr = string(found)
	}
	e.logger.Info(fmt.Sprintf("Expedition completion staged: sector=%s xp=%.0f item=%s", sector.Name, sector.XPReward, foundStr))
	e.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      events.EventTypeExpeditionComplete,
		Companion: e.session.Name(),
		Summary:   fmt.Sprintf("Expedition complete: %s. Pending: +%.0f XP, item: %s.", sector.Name, sector.XPReward, foundStr),
		Payload:   map[string]interface{}{"sector": sector.Name, "xp": sector.XPReward, "item": foundStr},
	})
}

// Collect docks the companion and applies staged rewards exactly once.
// Returns the sector, found item ("" if none) and XP granted.
func (e *ExpeditionSystem) Collect(ctx context.Context, now time.Time) (string, item.ID, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active {
		return "", "", 0, ErrNoExpedition
	}
	if !e.state.Complete {
		return "", "", 0, ErrExpeditionUnderway
	}
	if e.state.Collected {
		return "", "", 0, ErrRewardsCollected
	}

	sector := e.state.Sector
	found := e.state.PendingItem
	xp := e.state.PendingXP

	e.state.Collected = true
	e.session.GainXP(ctx, xp, "expedition", now)
	if found != "" {
		if !e.session.AddToInventory(ctx, found, now) {
			// Cargo hold full; the find is lost but XP stands.
			e.logger.Warn(fmt.Sprintf("Expedition find %s lost: inventory full", found))
			found = ""
		}
	}

	foundStr := "None"
	if found != "" {
		foundStr = string(found)
	}
	e.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      events.EventTypeExpeditionCollect,
		Companion: e.session.Name(),
		Summary:   fmt.Sprintf("Collected expedition rewards: +%.0f XP, item: %s.", xp, foundStr),
		Payload:   map[string]interface{}{"sector": sector, "xp": xp, "item": foundStr},
	})

	// Reset for the next launch.
	e.state = ExpeditionState{}
	e.save()

	return sector, found, xp, nil
}

// Remaining reports time left in transit, zero when idle or arrived.
func (e *ExpeditionSystem) Remaining(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active || e.state.Complete {
		return 0
	}
	d := e.state.End.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
