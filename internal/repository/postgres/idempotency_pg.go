// internal/repository/postgres/idempotency_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/util"
)

// IdempotencyRepository implements repository.IdempotencyRepository for
// PostgreSQL. The primary key on the client-supplied key is the hard
// uniqueness constraint the whole idempotency design rests on.
type IdempotencyRepository struct{}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository() repository.IdempotencyRepository {
	return &IdempotencyRepository{}
}

// Record inserts the key. A duplicate surfaces as util.ErrUniqueKeyViolation.
func (r *IdempotencyRepository) Record(ctx context.Context, q repository.DBExecutor, key string) error {
	const query = `INSERT INTO idempotency_keys (key, created_at) VALUES ($1, $2)`

	if _, err := q.ExecContext(ctx, query, key, time.Now().UTC()); err != nil {
		if mapped := mapUniqueViolation(err); mapped == util.ErrUniqueKeyViolation {
			return fmt.Errorf("idempotency key %s: %w", key, util.ErrUniqueKeyViolation)
		}
		return fmt.Errorf("failed to record idempotency key %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the key was already recorded.
func (r *IdempotencyRepository) Exists(ctx context.Context, q repository.DBExecutor, key string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM idempotency_keys WHERE key = $1)`

	var exists bool
	if err := q.GetContext(ctx, &exists, query, key); err != nil {
		return false, fmt.Errorf("failed to check idempotency key %s: %w", key, err)
	}
	return exists, nil
}
