// internal/repository/postgres/snapshot_store_pg.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/util"
)

// SnapshotStore implements repository.SnapshotStore for PostgreSQL, keeping
// one row per stream holding the latest snapshot.
type SnapshotStore struct{}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore() repository.SnapshotStore {
	return &SnapshotStore{}
}

// Get retrieves the latest snapshot for the stream.
func (s *SnapshotStore) Get(ctx context.Context, q repository.DBExecutor, streamID string) (*repository.Snapshot, error) {
	const query = `SELECT stream_id, version, state, created_at FROM snapshots WHERE stream_id = $1`

	var snap repository.Snapshot
	if err := q.GetContext(ctx, &snap, query, streamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot for stream %s: %w", streamID, err)
	}
	return &snap, nil
}

// Put upserts the snapshot. An older version never overwrites a newer one:
// concurrent writers may snapshot out of order and the newest must win.
func (s *SnapshotStore) Put(ctx context.Context, q repository.DBExecutor, streamID string, version int64, state json.RawMessage) error {
	const query = `INSERT INTO snapshots (stream_id, version, state, created_at)
	               VALUES ($1, $2, $3, $4)
	               ON CONFLICT (stream_id) DO UPDATE
	               SET version = EXCLUDED.version, state = EXCLUDED.state, created_at = EXCLUDED.created_at
	               WHERE snapshots.version < EXCLUDED.version`

	if _, err := q.ExecContext(ctx, query, streamID, version, []byte(state), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store snapshot for stream %s at version %d: %w", streamID, version, err)
	}
	return nil
}
