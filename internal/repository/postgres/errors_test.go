// internal/repository/postgres/errors_test.go
package postgres

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"ledgerflow-wallet/internal/util"
)

func TestMapUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"stream version", constraintStreamVersion, util.ErrVersionConflict},
		{"idempotency key", constraintIdempotencyKey, util.ErrUniqueKeyViolation},
		{"user email", constraintUserEmail, util.ErrDuplicateEntry},
		{"unknown constraint", "wallets_user_id_key", util.ErrDuplicateEntry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &pq.Error{Code: uniqueViolationCode, Constraint: tc.constraint}
			assert.ErrorIs(t, mapUniqueViolation(err), tc.want)
		})
	}
}

func TestMapUniqueViolationPassesThroughOtherErrors(t *testing.T) {
	plain := fmt.Errorf("connection reset")
	assert.Equal(t, plain, mapUniqueViolation(plain))

	// A pq error with a different code is not a unique violation.
	fk := &pq.Error{Code: "23503", Constraint: "transactions_wallet_id_fkey"}
	assert.Equal(t, error(fk), mapUniqueViolation(fk))

	// Wrapped unique violations are still recognized.
	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: uniqueViolationCode, Constraint: constraintStreamVersion})
	assert.ErrorIs(t, mapUniqueViolation(wrapped), util.ErrVersionConflict)
}
