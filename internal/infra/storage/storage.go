// Package storage provides durable homes for companion snapshots and
// the event journal: a YAML file store for single-steward play and a
// SQLite store for the server front-end.
package storage

import (
	"context"
	"errors"

	"github.com/nebulazenith/sanctuary/internal/domain/companion"
	"github.com/nebulazenith/sanctuary/internal/events"
)

// ErrNoSnapshot is returned when no saved companion exists for a name.
var ErrNoSnapshot = errors.New("no snapshot found")

// SnapshotStore persists companion snapshots keyed by companion name.
type SnapshotStore interface {
	Save(ctx context.Context, snap companion.Snapshot) error
	Load(ctx context.Context, name string) (companion.Snapshot, error)
	List(ctx context.Context) ([]string, error)
}

// EventStore persists journal events for the legacy report.
type EventStore interface {
	Append(event events.Event) error
	EventsFor(ctx context.Context, name string) ([]events.Event, error)
}
