package companion

import (
	"time"

	"github.com/nebulazenith/sanctuary/internal/domain/item"
)

// SnapshotSchemaVersion marks the snapshot layout. Bump on any field
// change so stores can refuse snapshots they do not understand.
const SnapshotSchemaVersion = 1

// Snapshot is the flat persistence record for a companion. The core
// performs no I/O; drivers hand snapshots to whichever store they own.
type Snapshot struct {
	SchemaVersion int    `yaml:"schema_version" json:"schema_version"`
	Name          string `yaml:"name" json:"name"`

	Hunger    float64 `yaml:"hunger" json:"hunger"`
	Happiness float64 `yaml:"happiness" json:"happiness"`
	Energy    float64 `yaml:"energy" json:"energy"`

	XP             float64 `yaml:"xp" json:"xp"`
	Level          int     `yaml:"level" json:"level"`
	EvolutionStage string  `yaml:"evolution_stage" json:"evolution_stage"`
	IsAlive        bool    `yaml:"is_alive" json:"is_alive"`

	BaseTrait      string    `yaml:"base_trait" json:"base_trait"`
	TempTrait      string    `yaml:"temp_trait,omitempty" json:"temp_trait,omitempty"`
	TempTraitUntil time.Time `yaml:"temp_trait_until" json:"temp_trait_until"`

	Inventory []string `yaml:"inventory" json:"inventory"`

	LastUpdate time.Time `yaml:"last_update" json:"last_update"`
}

// Snapshot captures every observable field of the companion.
func (c *Companion) Snapshot() Snapshot {
	inv := make([]string, len(c.Inventory))
	for i, id := range c.Inventory {
		inv[i] = string(id)
	}
	return Snapshot{
		SchemaVersion:  SnapshotSchemaVersion,
		Name:           c.Name,
		Hunger:         c.Hunger,
		Happiness:      c.Happiness,
		Energy:         c.Energy,
		XP:             c.XP,
		Level:          c.Level,
		EvolutionStage: string(c.EvolutionStage),
		IsAlive:        c.IsAlive,
		BaseTrait:      string(c.BaseTrait),
		TempTrait:      string(c.TempTrait),
		TempTraitUntil: c.TempTraitUntil,
		Inventory:      inv,
		LastUpdate:     c.LastUpdate,
	}
}

// FromSnapshot reconstructs a companion from a persisted record.
func FromSnapshot(s Snapshot) *Companion {
	inv := make([]item.ID, len(s.Inventory))
	for i, id := range s.Inventory {
		inv[i] = item.ID(id)
	}
	return &Companion{
		Name:           s.Name,
		Hunger:         clamp(s.Hunger),
		Happiness:      clamp(s.Happiness),
		Energy:         clamp(s.Energy),
		XP:             s.XP,
		Level:          s.Level,
		EvolutionStage: Stage(s.EvolutionStage),
		IsAlive:        s.IsAlive,
		BaseTrait:      Trait(s.BaseTrait),
		TempTrait:      Trait(s.TempTrait),
		TempTraitUntil: s.TempTraitUntil,
		Inventory:      inv,
		LastUpdate:     s.LastUpdate,
	}
}
