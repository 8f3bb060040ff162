// internal/domain/readmodels.go
package domain

import (
	"encoding/json"
	"time"
)

// Read-model rows maintained by the projectors. These are eventually-consistent
// followers of the event log, never a source of truth.

// Wallet is the projected wallet row.
type Wallet struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Currency     string    `db:"currency" json:"currency"`
	BalanceCents int64     `db:"balance_cents" json:"balance_cents"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// User is the projected user row, also used for identity resolution
// (recipient lookup by email) during transfers.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TransactionType classifies a projected transaction row.
type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
)

// Transaction is the projected per-wallet history row, unique per
// (idempotency_key, type): transfer halves share the transfer id but land as
// two rows, transfer_out and transfer_in, with RelatedUserEmail pointing at
// the counterparty.
type Transaction struct {
	ID                int64           `db:"id" json:"id"`
	WalletID          string          `db:"wallet_id" json:"wallet_id"`
	Type              TransactionType `db:"type" json:"type"`
	AmountCents       int64           `db:"amount_cents" json:"amount_cents"`
	BalanceAfterCents int64           `db:"balance_after_cents" json:"balance_after_cents"`
	RelatedUserEmail  *string         `db:"related_user_email" json:"related_user_email,omitempty"`
	IdempotencyKey    string          `db:"idempotency_key" json:"idempotency_key"`
	Metadata          json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}
