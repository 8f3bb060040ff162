// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input provided")
	ErrDuplicateEntry = errors.New("duplicate entry") // For cases like creating a user with existing email

	// Validation errors returned directly from aggregate commands.
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrMissingIdempotencyKey = errors.New("idempotency key is required")
	ErrSelfTransfer          = errors.New("cannot transfer to the same wallet")
	ErrCurrencyMismatch      = errors.New("currency mismatch")

	// State-conflict errors.
	ErrWalletNotCreated = errors.New("wallet has not been created")
	ErrAlreadyCreated   = errors.New("aggregate already created")

	// Business-rule violations.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDailyLimitExceeded  = errors.New("daily limit exceeded")

	// Not-found errors surfaced to callers.
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrRecipientNotFound = errors.New("recipient not found")

	// Idempotent replay: the exact operation already completed. Not a data error.
	ErrAlreadyProcessed = errors.New("operation already processed")

	// Concurrency and storage outcomes. VersionConflict triggers a reload-and-retry
	// inside the service layer; UniqueKeyViolation is the named outcome for a
	// duplicate idempotency key at commit time.
	ErrVersionConflict    = errors.New("aggregate version conflict")
	ErrUniqueKeyViolation = errors.New("unique key violation")
	ErrUnavailable        = errors.New("operation temporarily unavailable")
)

// IsError reports whether err matches target via errors.Is.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
