package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/events"
)

// SQLiteStore implements SnapshotStore and EventStore on a single
// SQLite database. It also satisfies events.Persister so the journal
// can write through to it.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Save(ctx context.Context, snap companion.Snapshot) error {
	inventoryBytes, err := json.Marshal(snap.Inventory)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}

	query := `
		INSERT INTO companions (name, schema_version, hunger, happiness, energy, xp, level, evolution_stage, is_alive, base_trait, temp_trait, temp_trait_until, inventory_json, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			schema_version=excluded.schema_version,
			hunger=excluded.hunger,
			happiness=excluded.happiness,
			energy=excluded.energy,
			xp=excluded.xp,
			level=excluded.level,
			evolution_stage=excluded.evolution_stage,
			is_alive=excluded.is_alive,
			base_trait=excluded.base_trait,
			temp_trait=excluded.temp_trait,
			temp_trait_until=excluded.temp_trait_until,
			inventory_json=excluded.inventory_json,
			last_update=excluded.last_update
	`
	_, err = s.db.ExecContext(ctx, query,
		snap.Name, snap.SchemaVersion, snap.Hunger, snap.Happiness, snap.Energy,
		snap.XP, snap.Level, snap.EvolutionStage, snap.IsAlive,
		snap.BaseTrait, snap.TempTrait, snap.TempTraitUntil, string(inventoryBytes), snap.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (companion.Snapshot, error) {
	query := `SELECT name, schema_version, hunger, happiness, energy, xp, level, evolution_stage, is_alive, base_trait, temp_trait, temp_trait_until, inventory_json, last_update FROM companions WHERE name = ?`

	var snap companion.Snapshot
	var tempTrait sql.NullString
	var tempTraitUntil sql.NullTime
	var inventoryStr string
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&snap.Name, &snap.SchemaVersion, &snap.Hunger, &snap.Happiness, &snap.Energy,
		&snap.XP, &snap.Level, &snap.EvolutionStage, &snap.IsAlive,
		&snap.BaseTrait, &tempTrait, &tempTraitUntil, &inventoryStr, &snap.LastUpdate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return companion.Snapshot{}, ErrNoSnapshot
		}
		return companion.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap.TempTrait = tempTrait.String
	if tempTraitUntil.Valid {
		snap.TempTraitUntil = tempTraitUntil.Time
	}
	if err := json.Unmarshal([]byte(inventoryStr), &snap.Inventory); err != nil {
		return companion.Snapshot{}, fmt.Errorf("failed to unmarshal inventory: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM companions ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Append writes one journal event. Satisfies events.Persister.
func (s *SQLiteStore) Append(event events.Event) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, companion, timestamp, event_type, summary, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		event.ID, event.Companion, event.Timestamp, string(event.Type),
		event.Summary, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// EventsFor returns the full journal for a companion, oldest first.
func (s *SQLiteStore) EventsFor(ctx context.Context, name string) ([]events.Event, error) {
	query := `SELECT id, companion, timestamp, event_type, summary, payload FROM events WHERE companion = ? ORDER BY timestamp ASC`
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var eventType string
		var payloadStr sql.NullString
		var ts time.Time
		if err := rows.Scan(&e.ID, &e.Companion, &ts, &eventType, &e.Summary, &payloadStr); err != nil {
			return nil, err
		}
		e.Timestamp = ts
		e.Type = events.EventType(eventType)
		if payloadStr.Valid && payloadStr.String != "" && payloadStr.String != "null" {
			var payload interface{}
			if err := json.Unmarshal([]byte(payloadStr.String), &payload); err == nil {
				e.Payload = payload
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
