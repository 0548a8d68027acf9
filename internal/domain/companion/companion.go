// Package companion defines the core domain entity for the virtual companion.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform, storage).
package companion

import (
	"math/rand"
	"time"

	"github.com/nebulazenith/sanctuary/internal/domain/item"
)

// Evolution stages. Advancement is strictly forward.
type Stage string

const (
	StageBaby  Stage = "Baby"
	StageTeen  Stage = "Teen"
	StageAdult Stage = "Adult"
)

// Vitals bounds and simulation constants.
const (
	MaxVital     = 10.0
	MinVital     = 0.0
	MaxInventory = 8

	// A long absence decays at most this much wall-clock time.
	CatchUpWindow = 15 * time.Minute

	// Full-to-empty drain targets at multiplier 1.0:
	// hunger ~12h, energy ~16h, happiness ~48h.
	hungerPerMinute    = MaxVital / (12 * 60)
	energyPerMinute    = MaxVital / (16 * 60)
	happinessPerMinute = MaxVital / (48 * 60)

	// Evolution thresholds, keyed by the pre-transition level.
	teenXPThreshold  = 150
	adultXPThreshold = 400
)

// ActionResult reports the outcome of a mutator. Invalid input is a
// result, never a fatal error.
type ActionResult string

const (
	ResultOK            ActionResult = "OK"
	ResultItemNotFound  ActionResult = "ITEM_NOT_FOUND"
	ResultNotEnoughXP   ActionResult = "INSUFFICIENT_XP"
	ResultInventoryFull ActionResult = "INVENTORY_FULL"
	ResultNotAlive      ActionResult = "NOT_ALIVE"
)

// Companion is the persistent pet entity shared by every front-end.
type Companion struct {
	Name string `json:"name"`

	// Vitals, always clamped to [0, 10].
	Hunger    float64 `json:"hunger"`
	Happiness float64 `json:"happiness"`
	Energy    float64 `json:"energy"`

	XP             float64 `json:"xp"`
	Level          int     `json:"level"`
	EvolutionStage Stage   `json:"evolution_stage"`
	IsAlive        bool    `json:"is_alive"`

	BaseTrait      Trait     `json:"base_trait"`
	TempTrait      Trait     `json:"temp_trait,omitempty"`
	TempTraitUntil time.Time `json:"temp_trait_until"`

	Inventory []item.ID `json:"inventory"`

	LastUpdate time.Time `json:"last_update"`
}

// New creates a newborn companion with full vitals and a random base trait.
func New(name string, now time.Time) *Companion {
	return &Companion{
		Name:           name,
		Hunger:         MaxVital,
		Happiness:      MaxVital,
		Energy:         MaxVital,
		XP:             0,
		Level:          1,
		EvolutionStage: StageBaby,
		IsAlive:        true,
		BaseTrait:      HatchlingTraits[rand.Intn(len(HatchlingTraits))],
		Inventory:      []item.ID{item.Apple, item.Apple, item.Berry, item.Berry, item.Coffee},
		LastUpdate:     now,
	}
}

// EffectiveTrait returns the temporary trait while unexpired, else the
// base trait. Always computed fresh; the override expires silently.
func (c *Companion) EffectiveTrait(now time.Time) Trait {
	if c.TempTrait != "" && now.Before(c.TempTraitUntil) {
		return c.TempTrait
	}
	return c.BaseTrait
}

// Update integrates vitals decay for the wall-clock time elapsed since
// the last call, capped at CatchUpWindow. Calling it again with a
// non-advancing timestamp changes nothing beyond re-checking evolution.
func (c *Companion) Update(now time.Time) {
	if !c.IsAlive {
		return
	}

	elapsed := now.Sub(c.LastUpdate)
	if elapsed > CatchUpWindow {
		elapsed = CatchUpWindow
	}

	if elapsed > 0 {
		trait := c.EffectiveTrait(now)
		minutes := elapsed.Minutes()

		// Happiness decay is emotional continuity, not a chore: when
		// hunger and energy are both high it barely drifts.
		wellbeing := (c.Hunger + c.Energy) / (2 * MaxVital)
		happinessNeed := 1.0 - wellbeing
		if happinessNeed < 0.05 {
			happinessNeed = 0.05
		}

		c.Hunger -= minutes * hungerPerMinute * hungerModifier(trait)
		c.Energy -= minutes * energyPerMinute * energyModifier(trait)
		c.Happiness -= minutes * happinessPerMinute * happinessNeed

		c.clampVitals()
		c.LastUpdate = now

		if c.Hunger <= MinVital {
			c.IsAlive = false
		}
	}

	c.checkEvolution()
}

// checkEvolution advances at most one stage per call. The level
// equality guard prevents double-advancing when Update runs repeatedly
// after a threshold crossing.
func (c *Companion) checkEvolution() {
	switch {
	case c.XP >= teenXPThreshold && c.Level == 1:
		c.evolve(StageTeen)
	case c.XP >= adultXPThreshold && c.Level == 2:
		c.evolve(StageAdult)
	}
}

func (c *Companion) evolve(stage Stage) {
	c.Level++
	c.EvolutionStage = stage
	c.BaseTrait = EvolvedTraits[rand.Intn(len(EvolvedTraits))]
}

// Feed consumes one instance of the item from the inventory and applies
// its vitals delta.
func (c *Companion) Feed(id item.ID) ActionResult {
	if !c.IsAlive {
		return ResultNotAlive
	}
	def, known := item.Get(id)
	if !known || !c.removeFromInventory(id) {
		return ResultItemNotFound
	}

	c.Hunger += def.Hunger
	c.Happiness += def.Happiness
	c.Energy += def.Energy
	c.clampVitals()
	return ResultOK
}

// Purchase deducts the item's XP price and appends it to the inventory.
func (c *Companion) Purchase(id item.ID) ActionResult {
	if !c.IsAlive {
		return ResultNotAlive
	}
	def, known := item.Get(id)
	if !known {
		return ResultItemNotFound
	}
	if len(c.Inventory) >= MaxInventory {
		return ResultInventoryFull
	}
	if c.XP < float64(def.Cost) {
		return ResultNotEnoughXP
	}

	c.XP -= float64(def.Cost)
	c.Inventory = append(c.Inventory, id)
	return ResultOK
}

// ApplyTrait sets a temporary trait override until now+duration,
// replacing any existing override.
func (c *Companion) ApplyTrait(t Trait, duration time.Duration, now time.Time) {
	if !c.IsAlive {
		return
	}
	c.TempTrait = t
	c.TempTraitUntil = now.Add(duration)
}

// ClearTempTrait wakes the companion from any temporary override.
func (c *Companion) ClearTempTrait() {
	c.TempTrait = ""
	c.TempTraitUntil = time.Time{}
}

// GainXP adds experience. Evolution is only evaluated on Update so the
// check always runs against fresh vitals.
func (c *Companion) GainXP(amount float64) {
	if !c.IsAlive || amount <= 0 {
		return
	}
	c.XP += amount
}

// SpendEnergy deducts an energy cost, reporting false when the
// companion cannot afford it.
func (c *Companion) SpendEnergy(amount float64) bool {
	if !c.IsAlive || c.Energy < amount {
		return false
	}
	c.Energy = clamp(c.Energy - amount)
	return true
}

// RestoreEnergy adds energy, clamped at the vitals ceiling.
func (c *Companion) RestoreEnergy(amount float64) {
	if !c.IsAlive {
		return
	}
	c.Energy = clamp(c.Energy + amount)
}

// AddToInventory appends an item, reporting false when the bay is full.
func (c *Companion) AddToInventory(id item.ID) bool {
	if !c.IsAlive || len(c.Inventory) >= MaxInventory {
		return false
	}
	c.Inventory = append(c.Inventory, id)
	return true
}

// HasItem reports whether at least one instance is carried.
func (c *Companion) HasItem(id item.ID) bool {
	for _, held := range c.Inventory {
		if held == id {
			return true
		}
	}
	return false
}

func (c *Companion) removeFromInventory(id item.ID) bool {
	for i, held := range c.Inventory {
		if held == id {
			c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Companion) clampVitals() {
	c.Hunger = clamp(c.Hunger)
	c.Happiness = clamp(c.Happiness)
	c.Energy = clamp(c.Energy)
}

func clamp(v float64) float64 {
	if v < MinVital {
		return MinVital
	}
	if v > MaxVital {
		return MaxVital
	}
	return v
}
