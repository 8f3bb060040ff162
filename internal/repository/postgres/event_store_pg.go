// internal/repository/postgres/event_store_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/util"
)

// EventStore implements repository.EventStore for PostgreSQL. The
// (stream_id, version) unique constraint is the optimistic concurrency check:
// a concurrent writer that committed first makes our insert collide, which
// surfaces as util.ErrVersionConflict.
type EventStore struct{}

// NewEventStore creates a new EventStore.
func NewEventStore() repository.EventStore {
	return &EventStore{}
}

// Append inserts the staged events with consecutive versions following
// expectedVersion. All inserts run on the caller's executor, so atomicity
// across streams is the caller's transaction.
func (s *EventStore) Append(ctx context.Context, q repository.DBExecutor, streamID string, expectedVersion int64, events []domain.RecordedEvent) ([]domain.StoredEvent, error) {
	const query = `INSERT INTO events (id, stream_id, version, kind, payload, occurred_at)
	               VALUES ($1, $2, $3, $4, $5, $6)`

	stored := make([]domain.StoredEvent, 0, len(events))
	for i, rec := range events {
		payload, err := domain.EncodeEvent(rec.Event)
		if err != nil {
			return nil, err
		}
		se := domain.StoredEvent{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			Version:    expectedVersion + int64(i) + 1,
			Kind:       rec.Event.Kind(),
			Payload:    payload,
			OccurredAt: rec.OccurredAt.UTC(),
		}
		if _, err := q.ExecContext(ctx, query, se.ID, se.StreamID, se.Version, se.Kind, []byte(se.Payload), se.OccurredAt); err != nil {
			if mapped := mapUniqueViolation(err); mapped == util.ErrVersionConflict {
				return nil, fmt.Errorf("append to stream %s at version %d: %w", streamID, se.Version, util.ErrVersionConflict)
			}
			return nil, fmt.Errorf("failed to append event %s to stream %s: %w", se.Kind, streamID, err)
		}
		stored = append(stored, se)
	}
	return stored, nil
}

// LoadFrom returns the stream's events with version > sinceVersion in strict
// version order.
func (s *EventStore) LoadFrom(ctx context.Context, q repository.DBExecutor, streamID string, sinceVersion int64) ([]domain.StoredEvent, error) {
	const query = `SELECT id, stream_id, version, kind, payload, occurred_at
	               FROM events
	               WHERE stream_id = $1 AND version > $2
	               ORDER BY version ASC`

	var events []domain.StoredEvent
	if err := q.SelectContext(ctx, &events, query, streamID, sinceVersion); err != nil {
		return nil, fmt.Errorf("failed to load events for stream %s after version %d: %w", streamID, sinceVersion, err)
	}
	return events, nil
}
