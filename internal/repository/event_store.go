// internal/repository/event_store.go
package repository

import (
	"context"

	"ledgerflow-wallet/internal/domain"
)

// EventStore is the append-only, per-stream event log with optimistic
// concurrency. Append fails with util.ErrVersionConflict when another writer
// committed to the stream since expectedVersion was read; the caller must
// reload the aggregate and retry the whole command.
type EventStore interface {
	// Append stores events with versions expectedVersion+1 … expectedVersion+len(events),
	// visible atomically to subsequent readers. It returns the stored envelopes
	// in commit order for post-commit projection.
	Append(ctx context.Context, q DBExecutor, streamID string, expectedVersion int64, events []domain.RecordedEvent) ([]domain.StoredEvent, error)
	// LoadFrom returns the ordered events with version > sinceVersion. A fresh
	// call replays from the same point deterministically.
	LoadFrom(ctx context.Context, q DBExecutor, streamID string, sinceVersion int64) ([]domain.StoredEvent, error)
}
