// internal/domain/event.go
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds. The set is closed: every kind listed here must have a case in
// DecodeEvent and in the owning aggregate's apply switch. EventKinds exists so
// tests can assert that coverage.
const (
	EventWalletCreated       = "wallet_created"
	EventMoneyDeposited      = "money_deposited"
	EventMoneyWithdrawn      = "money_withdrawn"
	EventMoneyTransferredOut = "money_transferred_out"
	EventMoneyTransferredIn  = "money_transferred_in"
	EventUserCreated         = "user_created"
)

// EventKinds lists every event kind in the system.
var EventKinds = []string{
	EventWalletCreated,
	EventMoneyDeposited,
	EventMoneyWithdrawn,
	EventMoneyTransferredOut,
	EventMoneyTransferredIn,
	EventUserCreated,
}

// Event is a domain event payload. Implementations are immutable once recorded.
type Event interface {
	Kind() string
}

// WalletCreated marks the creation of a wallet for a user.
type WalletCreated struct {
	WalletID string `json:"wallet_id"`
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

func (WalletCreated) Kind() string { return EventWalletCreated }

// MoneyDeposited records a deposit. BalanceAfterCents is the wallet balance
// once the deposit is applied; replay trusts it instead of recomputing.
type MoneyDeposited struct {
	WalletID          string            `json:"wallet_id"`
	AmountCents       int64             `json:"amount_cents"`
	BalanceAfterCents int64             `json:"balance_after_cents"`
	IdempotencyKey    string            `json:"idempotency_key"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (MoneyDeposited) Kind() string { return EventMoneyDeposited }

// MoneyWithdrawn records a withdrawal.
type MoneyWithdrawn struct {
	WalletID          string            `json:"wallet_id"`
	AmountCents       int64             `json:"amount_cents"`
	BalanceAfterCents int64             `json:"balance_after_cents"`
	IdempotencyKey    string            `json:"idempotency_key"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (MoneyWithdrawn) Kind() string { return EventMoneyWithdrawn }

// MoneyTransferredOut records the debit half of a transfer. TransferID is the
// idempotency key shared by both halves.
type MoneyTransferredOut struct {
	WalletID          string            `json:"wallet_id"`
	AmountCents       int64             `json:"amount_cents"`
	BalanceAfterCents int64             `json:"balance_after_cents"`
	RecipientEmail    string            `json:"recipient_email"`
	TransferID        string            `json:"transfer_id"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (MoneyTransferredOut) Kind() string { return EventMoneyTransferredOut }

// MoneyTransferredIn records the credit half of a transfer.
type MoneyTransferredIn struct {
	WalletID          string            `json:"wallet_id"`
	AmountCents       int64             `json:"amount_cents"`
	BalanceAfterCents int64             `json:"balance_after_cents"`
	SenderEmail       string            `json:"sender_email"`
	TransferID        string            `json:"transfer_id"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (MoneyTransferredIn) Kind() string { return EventMoneyTransferredIn }

// UserCreated marks the creation of a user identity.
type UserCreated struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

func (UserCreated) Kind() string { return EventUserCreated }

// StoredEvent is the persisted envelope around an Event: which stream it
// belongs to, its per-stream version, and when it occurred. Payload is the
// JSON encoding of the domain event.
type StoredEvent struct {
	ID         string          `db:"id" json:"id"`
	StreamID   string          `db:"stream_id" json:"stream_id"`
	Version    int64           `db:"version" json:"version"`
	Kind       string          `db:"kind" json:"kind"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurred_at"`
}

// Decode unmarshals the envelope payload into the typed domain event.
func (se StoredEvent) Decode() (Event, error) {
	return DecodeEvent(se.Kind, se.Payload)
}

// EncodeEvent serializes a domain event payload for storage.
func EncodeEvent(ev Event) (json.RawMessage, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", ev.Kind(), err)
	}
	return payload, nil
}

// DecodeEvent deserializes a stored payload into the typed domain event.
// An unknown kind is an error: an event kind without a decoder would be
// silently unapplied during replay otherwise.
func DecodeEvent(kind string, payload json.RawMessage) (Event, error) {
	var (
		ev  Event
		err error
	)
	switch kind {
	case EventWalletCreated:
		var e WalletCreated
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventMoneyDeposited:
		var e MoneyDeposited
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventMoneyWithdrawn:
		var e MoneyWithdrawn
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventMoneyTransferredOut:
		var e MoneyTransferredOut
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventMoneyTransferredIn:
		var e MoneyTransferredIn
		err = json.Unmarshal(payload, &e)
		ev = e
	case EventUserCreated:
		var e UserCreated
		err = json.Unmarshal(payload, &e)
		ev = e
	default:
		return nil, fmt.Errorf("decode event: unknown kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode event %s: %w", kind, err)
	}
	return ev, nil
}
