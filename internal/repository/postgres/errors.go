// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"github.com/lib/pq"

	"ledgerflow-wallet/internal/util"
)

// pq constraint names this package maps to named outcomes, so nothing above
// the repository layer ever inspects driver error codes.
const (
	constraintStreamVersion  = "events_stream_id_version_key"
	constraintIdempotencyKey = "idempotency_keys_pkey"
	constraintUserEmail      = "users_email_key"
)

const uniqueViolationCode = "23505"

// mapUniqueViolation translates a pq unique-violation into the sentinel for
// the constraint that fired. Any other error passes through unchanged.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return err
	}
	switch pqErr.Constraint {
	case constraintStreamVersion:
		return util.ErrVersionConflict
	case constraintIdempotencyKey:
		return util.ErrUniqueKeyViolation
	case constraintUserEmail:
		return util.ErrDuplicateEntry
	default:
		return util.ErrDuplicateEntry
	}
}
