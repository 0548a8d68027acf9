package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/domain/item"
	"github.com/nebulazenith/sanctuary/internal/events"
	"github.com/nebulazenith/sanctuary/internal/infra/storage"
	"github.com/nebulazenith/sanctuary/internal/platform/logger"
)

// DeepSleepDuration is how long the Deep Sleep trait stays applied.
const DeepSleepDuration = time.Hour

// DeepSleepEnergyBonus is granted immediately when sleep is initiated.
const DeepSleepEnergyBonus = 2.0

// Session owns one companion for one steward. All mutations go through
// it: vitals are integrated first, the journal records the action, and
// a snapshot is persisted before the call returns.
type Session struct {
	mu        sync.Mutex
	companion *companion.Companion
	store     storage.SnapshotStore
	eventLog  *events.Log
	logger    *logger.Logger
}

// NewSession wraps an existing companion.
func NewSession(c *companion.Companion, store storage.SnapshotStore, log *events.Log, l *logger.Logger) *Session {
	return &Session{companion: c, store: store, eventLog: log, logger: l}
}

// LoadOrCreate restores a companion by name, creating a fresh hatchling
// when no snapshot exists.
func LoadOrCreate(ctx context.Context, name string, store storage.SnapshotStore, log *events.Log, l *logger.Logger, now time.Time) (*Session, error) {
	snap, err := store.Load(ctx, name)
	if err == storage.ErrNoSnapshot {
		c := companion.New(name, now)
		s := NewSession(c, store, log, l)
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
		l.Info(fmt.Sprintf("Companion %q awakened in the sanctuary", name))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load companion: %w", err)
	}

	c := companion.FromSnapshot(snap)
	c.Update(now)
	s := NewSession(c, store, log, l)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Companion returns a point-in-time snapshot for rendering. Callers
// never get the live pointer.
func (s *Session) Companion() companion.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companion.Snapshot()
}

// View integrates vitals to now and returns the derived read model.
func (s *Session) View(ctx context.Context, now time.Time) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.integrate(ctx, now)
	c := s.companion
	return View{
		Snapshot: c.Snapshot(),
		Mood:     c.Mood(now),
		MoodLine: companion.MoodLine(c.Name, c.Mood(now)),
		Avatar:   c.Avatar(now),
		Trait:    c.EffectiveTrait(now),
	}
}

// View is the derived read model handed to front-ends.
type View struct {
	Snapshot companion.Snapshot
	Mood     companion.Mood
	MoodLine string
	Avatar   companion.AvatarState
	Trait    companion.Trait
}

// Tick integrates elapsed time and persists. Called by the heartbeat.
func (s *Session) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	if err := s.persist(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("tick persist failed: %v", err))
	}
}

// integrate runs Update and emits DEATH/EVOLUTION journal entries when
// the update crossed either threshold. Caller holds the lock.
func (s *Session) integrate(ctx context.Context, now time.Time) {
	before := s.companion.Snapshot()
	s.companion.Update(now)
	after := s.companion

	if before.IsAlive && !after.IsAlive {
		s.append(now, events.EventTypeDeath, fmt.Sprintf("%s has drifted beyond the veil.", after.Name), nil)
	}
	if after.Level > before.Level {
		s.append(now, events.EventTypeEvolution,
			fmt.Sprintf("%s evolved to %s (level %d)!", after.Name, after.EvolutionStage, after.Level),
			map[string]interface{}{"stage": string(after.EvolutionStage), "level": after.Level})
	}
}

// Feed consumes an inventory item and applies its vitals deltas.
func (s *Session) Feed(ctx context.Context, id item.ID, now time.Time) companion.ActionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	res := s.companion.Feed(id)
	if res == companion.ResultOK {
		s.append(now, events.EventTypeFeed, fmt.Sprintf("%s enjoyed a %s.", s.companion.Name, id),
			map[string]string{"item": string(id)})
		if err := s.persist(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("feed persist failed: %v", err))
		}
	}
	return res
}

// Purchase spends XP on a shop item and adds it to the inventory.
func (s *Session) Purchase(ctx context.Context, id item.ID, now time.Time) companion.ActionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	res := s.companion.Purchase(id)
	if res == companion.ResultOK {
		def, _ := item.Get(id)
		s.append(now, events.EventTypePurchase,
			fmt.Sprintf("Acquired %s for %d wisdom.", id, def.Cost),
			map[string]interface{}{"item": string(id), "cost": def.Cost})
		if err := s.persist(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("purchase persist failed: %v", err))
		}
	}
	return res
}

// DeepSleep applies the Deep Sleep trait for an hour and grants a small
// immediate energy bonus.
func (s *Session) DeepSleep(ctx context.Context, now time.Time) companion.ActionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	if !s.companion.IsAlive {
		return companion.ResultNotAlive
	}
	s.companion.ApplyTrait(companion.TraitDeepSleep, DeepSleepDuration, now)
	s.companion.RestoreEnergy(DeepSleepEnergyBonus)
	s.append(now, events.EventTypeSleep, fmt.Sprintf("%s sank into a deep sleep.", s.companion.Name), nil)
	if err := s.persist(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("sleep persist failed: %v", err))
	}
	return companion.ResultOK
}

// Wake clears any temporary trait early.
func (s *Session) Wake(ctx context.Context, now time.Time) companion.ActionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	if !s.companion.IsAlive {
		return companion.ResultNotAlive
	}
	s.companion.ClearTempTrait()
	s.append(now, events.EventTypeWake, fmt.Sprintf("%s stirred awake.", s.companion.Name), nil)
	if err := s.persist(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("wake persist failed: %v", err))
	}
	return companion.ResultOK
}

// GainXP credits wisdom from expeditions or the arcade.
func (s *Session) GainXP(ctx context.Context, amount float64, source string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	before := s.companion.Level
	s.companion.GainXP(amount)
	// Evolution is only evaluated inside Update; re-run it against the
	// same timestamp so a threshold crossing takes effect immediately.
	s.companion.Update(now)
	s.append(now, events.EventTypeXPGain, fmt.Sprintf("+%.0f wisdom (%s)", amount, source),
		map[string]interface{}{"amount": amount, "source": source})
	if s.companion.Level > before {
		s.append(now, events.EventTypeEvolution,
			fmt.Sprintf("%s evolved to %s (level %d)!", s.companion.Name, s.companion.EvolutionStage, s.companion.Level),
			map[string]interface{}{"stage": string(s.companion.EvolutionStage), "level": s.companion.Level})
	}
	if err := s.persist(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("xp persist failed: %v", err))
	}
}

// SpendEnergy attempts to deduct energy, e.g. for an expedition launch.
func (s *Session) SpendEnergy(ctx context.Context, amount float64, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.integrate(ctx, now)
	if !s.companion.SpendEnergy(amount) {
		return false
	}
	if err := s.persist(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("energy persist failed: %v", err))
	}
	return true
}

// AddToInventory stows an expedition find. Returns false when full.
func (s *Session) AddToInventory(ctx context.Context, id item.ID, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.companion.AddToInventory(id)
	if ok {
		if err := s.persist(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("inventory persist failed: %v", err))
		}
	}
	return ok
}

// Name returns the companion's name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companion.Name
}

// Journal exposes the most recent journal entries, newest last.
func (s *Session) Journal(n int) []events.Event {
	return s.eventLog.Recent(n)
}

func (s *Session) append(now time.Time, t events.EventType, summary string, payload interface{}) {
	s.eventLog.Append(events.Event{
		ID:        events.GenerateEventID(),
		Timestamp: now,
		Type:      t,
		Companion: s.companion.Name,
		Summary:   summary,
		Payload:   payload,
	})
}

func (s *Session) persist(ctx context.Context) error {
	return s.store.Save(ctx, s.companion.Snapshot())
}
