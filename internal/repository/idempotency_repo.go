// internal/repository/idempotency_repo.go
package repository

import "context"

// IdempotencyRepository is the durable index of client-supplied idempotency
// keys. Record is called inside the same transaction that appends the events
// of the operation, so key uniqueness is enforced by the store as a hard
// constraint rather than a check-then-act. Keys are never deleted.
type IdempotencyRepository interface {
	// Record stores the key. A duplicate fails with util.ErrUniqueKeyViolation,
	// which the service layer resolves into util.ErrAlreadyProcessed.
	Record(ctx context.Context, q DBExecutor, key string) error
	// Exists reports whether the key was already recorded. Used as a cheap
	// pre-check on retries; Record remains the race-proof guarantee.
	Exists(ctx context.Context, q DBExecutor, key string) (bool, error)
}
