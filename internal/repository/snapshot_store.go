// internal/repository/snapshot_store.go
package repository

import (
	"context"
	"encoding/json"
	"time"
)

// Snapshot is a cached materialization of aggregate state as of a version.
// It is a replay optimization only, never a source of truth.
type Snapshot struct {
	StreamID  string          `db:"stream_id"`
	Version   int64           `db:"version"`
	State     json.RawMessage `db:"state"`
	CreatedAt time.Time       `db:"created_at"`
}

// SnapshotStore keeps the latest snapshot per stream.
type SnapshotStore interface {
	// Get returns the latest snapshot for the stream, or util.ErrNotFound.
	Get(ctx context.Context, q DBExecutor, streamID string) (*Snapshot, error)
	// Put stores a snapshot, superseding any earlier one for the stream.
	Put(ctx context.Context, q DBExecutor, streamID string, version int64, state json.RawMessage) error
}
