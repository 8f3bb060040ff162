// internal/domain/wallet.go
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"ledgerflow-wallet/internal/util"
)

// dateLayout is the UTC calendar-day granularity used for daily limits.
const dateLayout = "2006-01-02"

// Limits holds the daily caps applied to money-moving commands. They are
// passed into each command explicitly so the aggregate stays deterministic
// given (state, command, limits, now).
type Limits struct {
	DailyWithdrawalCents  int64
	DailyTransferOutCents int64
}

// WalletState is the state of one wallet derived from its event stream. It is
// never the source of truth: replaying the stream must always reproduce it.
type WalletState struct {
	ID                    string `json:"id"`
	UserID                string `json:"user_id"`
	Currency              string `json:"currency"`
	BalanceCents          int64  `json:"balance_cents"`
	IsCreated             bool   `json:"is_created"`
	DailyWithdrawalCents  int64  `json:"daily_withdrawal_cents"`
	DailyTransferOutCents int64  `json:"daily_transfer_out_cents"`
	LastActivityDate      string `json:"last_activity_date,omitempty"` // UTC day, "2006-01-02"
	Version               int64  `json:"version"`
}

// RecordedEvent is a staged, not-yet-durable event together with the moment
// the command produced it. OccurredAt is persisted with the event so replay
// derives the daily accumulators from the operation's own day, not from the
// wall clock at replay time.
type RecordedEvent struct {
	Event      Event
	OccurredAt time.Time
}

// WalletAggregate reconstructs a wallet from its event stream and turns
// commands into events. Commands validate invariants against current state
// and stage exactly one event; persistence is the caller's responsibility.
type WalletAggregate struct {
	state   WalletState
	pending []RecordedEvent
}

// NewWalletAggregate returns an uninitialized aggregate for the given stream id.
func NewWalletAggregate(id string) *WalletAggregate {
	return &WalletAggregate{state: WalletState{ID: id}}
}

// State returns a copy of the current derived state.
func (w *WalletAggregate) State() WalletState { return w.state }

// Version returns the current aggregate version including staged events.
func (w *WalletAggregate) Version() int64 { return w.state.Version }

// BalanceCents returns the current balance in minor units.
func (w *WalletAggregate) BalanceCents() int64 { return w.state.BalanceCents }

// Currency returns the wallet currency.
func (w *WalletAggregate) Currency() string { return w.state.Currency }

// IsCreated reports whether the wallet has been created.
func (w *WalletAggregate) IsCreated() bool { return w.state.IsCreated }

// PendingEvents returns the staged events awaiting durable commit.
func (w *WalletAggregate) PendingEvents() []RecordedEvent { return w.pending }

// ClearPending drops staged events after a successful commit.
func (w *WalletAggregate) ClearPending() { w.pending = nil }

// RestoreSnapshot primes the aggregate from a snapshot taken at version.
// Snapshots are a replay shortcut only; state beyond the snapshot version is
// rebuilt by applying newer stored events.
func (w *WalletAggregate) RestoreSnapshot(version int64, state []byte) error {
	var s WalletState
	if err := json.Unmarshal(state, &s); err != nil {
		return fmt.Errorf("wallet %s: restore snapshot: %w", w.state.ID, err)
	}
	s.ID = w.state.ID
	s.Version = version
	w.state = s
	return nil
}

// SnapshotState serializes the current state for the snapshot store.
func (w *WalletAggregate) SnapshotState() ([]byte, error) {
	return json.Marshal(w.state)
}

// ApplyStored replays one committed event from the stream, in version order.
func (w *WalletAggregate) ApplyStored(se StoredEvent) error {
	ev, err := se.Decode()
	if err != nil {
		return err
	}
	next, err := applyWalletEvent(w.state, ev, se.OccurredAt)
	if err != nil {
		return err
	}
	next.Version = se.Version
	w.state = next
	return nil
}

// recordThat applies the event to in-memory state, advances the version by
// one and stages the event for commit.
func (w *WalletAggregate) recordThat(ev Event, now time.Time) error {
	next, err := applyWalletEvent(w.state, ev, now)
	if err != nil {
		return err
	}
	next.Version = w.state.Version + 1
	w.state = next
	w.pending = append(w.pending, RecordedEvent{Event: ev, OccurredAt: now})
	return nil
}

// Create initializes the wallet for a user.
func (w *WalletAggregate) Create(userID, currency string, now time.Time) error {
	if w.state.IsCreated {
		return fmt.Errorf("wallet %s: %w", w.state.ID, util.ErrAlreadyCreated)
	}
	return w.recordThat(WalletCreated{
		WalletID: w.state.ID,
		UserID:   userID,
		Currency: currency,
	}, now)
}

// Deposit credits the wallet. The idempotency key travels with the event so
// the transaction projection can enforce its uniqueness as well.
func (w *WalletAggregate) Deposit(amountCents int64, idempotencyKey string, metadata map[string]string, now time.Time) error {
	if err := w.ensureCreated(); err != nil {
		return err
	}
	if err := ensurePositive(amountCents); err != nil {
		return err
	}
	if idempotencyKey == "" {
		return util.ErrMissingIdempotencyKey
	}
	return w.recordThat(MoneyDeposited{
		WalletID:          w.state.ID,
		AmountCents:       amountCents,
		BalanceAfterCents: w.state.BalanceCents + amountCents,
		IdempotencyKey:    idempotencyKey,
		Metadata:          metadata,
	}, now)
}

// Withdraw debits the wallet, subject to balance and the daily withdrawal cap.
func (w *WalletAggregate) Withdraw(amountCents int64, idempotencyKey string, metadata map[string]string, limits Limits, now time.Time) error {
	if err := w.ensureCreated(); err != nil {
		return err
	}
	if err := ensurePositive(amountCents); err != nil {
		return err
	}
	if idempotencyKey == "" {
		return util.ErrMissingIdempotencyKey
	}
	if err := w.ensureSufficientBalance(amountCents); err != nil {
		return err
	}
	usage := w.dailyUsage(w.state.DailyWithdrawalCents, now)
	if usage+amountCents > limits.DailyWithdrawalCents {
		return fmt.Errorf("wallet %s: withdrawal of %d with %d already used today against cap %d: %w",
			w.state.ID, amountCents, usage, limits.DailyWithdrawalCents, util.ErrDailyLimitExceeded)
	}
	return w.recordThat(MoneyWithdrawn{
		WalletID:          w.state.ID,
		AmountCents:       amountCents,
		BalanceAfterCents: w.state.BalanceCents - amountCents,
		IdempotencyKey:    idempotencyKey,
		Metadata:          metadata,
	}, now)
}

// TransferOut debits the wallet as the sending half of a transfer. The daily
// transfer cap is a separate accumulator from withdrawals. Deduplication of
// the transfer id across both halves is the orchestrator's job.
func (w *WalletAggregate) TransferOut(amountCents int64, recipientEmail, transferID string, metadata map[string]string, limits Limits, now time.Time) error {
	if err := w.ensureCreated(); err != nil {
		return err
	}
	if err := ensurePositive(amountCents); err != nil {
		return err
	}
	if transferID == "" {
		return util.ErrMissingIdempotencyKey
	}
	if err := w.ensureSufficientBalance(amountCents); err != nil {
		return err
	}
	usage := w.dailyUsage(w.state.DailyTransferOutCents, now)
	if usage+amountCents > limits.DailyTransferOutCents {
		return fmt.Errorf("wallet %s: transfer of %d with %d already used today against cap %d: %w",
			w.state.ID, amountCents, usage, limits.DailyTransferOutCents, util.ErrDailyLimitExceeded)
	}
	return w.recordThat(MoneyTransferredOut{
		WalletID:          w.state.ID,
		AmountCents:       amountCents,
		BalanceAfterCents: w.state.BalanceCents - amountCents,
		RecipientEmail:    recipientEmail,
		TransferID:        transferID,
		Metadata:          metadata,
	}, now)
}

// TransferIn credits the wallet as the receiving half of a transfer.
// Incoming money is never capped.
func (w *WalletAggregate) TransferIn(amountCents int64, senderEmail, transferID string, metadata map[string]string, now time.Time) error {
	if err := w.ensureCreated(); err != nil {
		return err
	}
	if err := ensurePositive(amountCents); err != nil {
		return err
	}
	if transferID == "" {
		return util.ErrMissingIdempotencyKey
	}
	return w.recordThat(MoneyTransferredIn{
		WalletID:          w.state.ID,
		AmountCents:       amountCents,
		BalanceAfterCents: w.state.BalanceCents + amountCents,
		SenderEmail:       senderEmail,
		TransferID:        transferID,
		Metadata:          metadata,
	}, now)
}

func (w *WalletAggregate) ensureCreated() error {
	if !w.state.IsCreated {
		return fmt.Errorf("wallet %s: %w", w.state.ID, util.ErrWalletNotCreated)
	}
	return nil
}

func (w *WalletAggregate) ensureSufficientBalance(amountCents int64) error {
	if w.state.BalanceCents < amountCents {
		return fmt.Errorf("wallet %s: balance %d, requested %d: %w",
			w.state.ID, w.state.BalanceCents, amountCents, util.ErrInsufficientBalance)
	}
	return nil
}

// dailyUsage returns the accumulated total counted against today's cap, or
// zero when the wallet's last activity was on a different UTC day.
func (w *WalletAggregate) dailyUsage(accumulated int64, now time.Time) int64 {
	if w.state.LastActivityDate == now.UTC().Format(dateLayout) {
		return accumulated
	}
	return 0
}

func ensurePositive(amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("amount %d: %w", amountCents, util.ErrInvalidAmount)
	}
	return nil
}

// applyWalletEvent is the pure state transition: it folds one event into the
// state. Balances come from BalanceAfterCents recorded at command time; the
// daily accumulators reset when the event's UTC day differs from the last
// recorded activity day and accumulate otherwise. It never validates; guard
// failures happen before an event is recorded, so every recorded event must
// apply cleanly.
func applyWalletEvent(state WalletState, ev Event, occurredAt time.Time) (WalletState, error) {
	day := occurredAt.UTC().Format(dateLayout)
	switch e := ev.(type) {
	case WalletCreated:
		state.IsCreated = true
		state.UserID = e.UserID
		state.Currency = e.Currency
		state.BalanceCents = 0
	case MoneyDeposited:
		state.BalanceCents = e.BalanceAfterCents
	case MoneyWithdrawn:
		state.BalanceCents = e.BalanceAfterCents
		if state.LastActivityDate != day {
			state.DailyWithdrawalCents = 0
			state.DailyTransferOutCents = 0
		}
		state.DailyWithdrawalCents += e.AmountCents
		state.LastActivityDate = day
	case MoneyTransferredOut:
		state.BalanceCents = e.BalanceAfterCents
		if state.LastActivityDate != day {
			state.DailyWithdrawalCents = 0
			state.DailyTransferOutCents = 0
		}
		state.DailyTransferOutCents += e.AmountCents
		state.LastActivityDate = day
	case MoneyTransferredIn:
		state.BalanceCents = e.BalanceAfterCents
	default:
		return state, fmt.Errorf("wallet %s: no handler for event kind %q", state.ID, ev.Kind())
	}
	return state, nil
}
