// internal/domain/wallet_test.go
package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerflow-wallet/internal/util"
)

var testLimits = Limits{DailyWithdrawalCents: 500000, DailyTransferOutCents: 500000}

func day(d int, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

// asStored converts staged events into persisted envelopes, the way the event
// store would on append.
func asStored(t *testing.T, streamID string, fromVersion int64, recorded []RecordedEvent) []StoredEvent {
	t.Helper()
	stored := make([]StoredEvent, 0, len(recorded))
	for i, re := range recorded {
		payload, err := EncodeEvent(re.Event)
		require.NoError(t, err)
		stored = append(stored, StoredEvent{
			ID:         fmt.Sprintf("evt-%d", fromVersion+int64(i)+1),
			StreamID:   streamID,
			Version:    fromVersion + int64(i) + 1,
			Kind:       re.Event.Kind(),
			Payload:    payload,
			OccurredAt: re.OccurredAt,
		})
	}
	return stored
}

func createdWallet(t *testing.T, id string) *WalletAggregate {
	t.Helper()
	w := NewWalletAggregate(id)
	require.NoError(t, w.Create("user-1", "BRL", day(10, 9)))
	return w
}

func TestWalletCreate(t *testing.T) {
	w := NewWalletAggregate("wallet-1")
	require.NoError(t, w.Create("user-1", "BRL", day(10, 9)))

	assert.True(t, w.IsCreated())
	assert.Equal(t, int64(0), w.BalanceCents())
	assert.Equal(t, "BRL", w.Currency())
	assert.Equal(t, int64(1), w.Version())
	require.Len(t, w.PendingEvents(), 1)
	assert.Equal(t, EventWalletCreated, w.PendingEvents()[0].Event.Kind())

	err := w.Create("user-1", "BRL", day(10, 9))
	assert.ErrorIs(t, err, util.ErrAlreadyCreated)
}

// The canonical command sequence: deposit, withdraw, then a withdrawal the
// balance cannot cover. Failed commands leave state and version untouched.
func TestWalletDepositWithdrawSequence(t *testing.T) {
	w := createdWallet(t, "wallet-1")

	require.NoError(t, w.Deposit(50000, "K1", nil, day(10, 10)))
	assert.Equal(t, int64(50000), w.BalanceCents())

	require.NoError(t, w.Withdraw(20000, "K2", nil, testLimits, day(10, 11)))
	assert.Equal(t, int64(30000), w.BalanceCents())

	err := w.Withdraw(40000, "K3", nil, testLimits, day(10, 12))
	assert.ErrorIs(t, err, util.ErrInsufficientBalance)
	assert.Equal(t, int64(30000), w.BalanceCents())
	assert.Equal(t, int64(3), w.Version())
	assert.Len(t, w.PendingEvents(), 3)
}

func TestWalletCommandsRequireCreation(t *testing.T) {
	w := NewWalletAggregate("wallet-1")

	assert.ErrorIs(t, w.Deposit(100, "K1", nil, day(10, 10)), util.ErrWalletNotCreated)
	assert.ErrorIs(t, w.Withdraw(100, "K1", nil, testLimits, day(10, 10)), util.ErrWalletNotCreated)
	assert.ErrorIs(t, w.TransferOut(100, "bob@example.com", "T1", nil, testLimits, day(10, 10)), util.ErrWalletNotCreated)
	assert.ErrorIs(t, w.TransferIn(100, "alice@example.com", "T1", nil, day(10, 10)), util.ErrWalletNotCreated)
	assert.Empty(t, w.PendingEvents())
}

func TestWalletCommandValidation(t *testing.T) {
	w := createdWallet(t, "wallet-1")
	require.NoError(t, w.Deposit(1000, "K0", nil, day(10, 9)))

	assert.ErrorIs(t, w.Deposit(0, "K1", nil, day(10, 10)), util.ErrInvalidAmount)
	assert.ErrorIs(t, w.Deposit(-5, "K1", nil, day(10, 10)), util.ErrInvalidAmount)
	assert.ErrorIs(t, w.Deposit(100, "", nil, day(10, 10)), util.ErrMissingIdempotencyKey)
	assert.ErrorIs(t, w.Withdraw(100, "", nil, testLimits, day(10, 10)), util.ErrMissingIdempotencyKey)
	assert.ErrorIs(t, w.TransferOut(100, "bob@example.com", "", nil, testLimits, day(10, 10)), util.ErrMissingIdempotencyKey)
	assert.Equal(t, int64(1000), w.BalanceCents())
}

func TestWalletDailyWithdrawalLimit(t *testing.T) {
	limits := Limits{DailyWithdrawalCents: 30000, DailyTransferOutCents: 500000}
	w := createdWallet(t, "wallet-1")
	require.NoError(t, w.Deposit(100000, "K1", nil, day(10, 9)))

	require.NoError(t, w.Withdraw(20000, "K2", nil, limits, day(10, 10)))
	require.NoError(t, w.Withdraw(10000, "K3", nil, limits, day(10, 11)))

	// Cap reached for the day.
	err := w.Withdraw(1, "K4", nil, limits, day(10, 12))
	assert.ErrorIs(t, err, util.ErrDailyLimitExceeded)

	// A new UTC day resets the accumulator.
	require.NoError(t, w.Withdraw(30000, "K5", nil, limits, day(11, 0)))
	assert.Equal(t, int64(40000), w.BalanceCents())
}

func TestWalletDailyTransferLimitIsSeparate(t *testing.T) {
	limits := Limits{DailyWithdrawalCents: 10000, DailyTransferOutCents: 10000}
	w := createdWallet(t, "wallet-1")
	require.NoError(t, w.Deposit(100000, "K1", nil, day(10, 9)))

	// Exhausting the withdrawal cap leaves the transfer cap untouched.
	require.NoError(t, w.Withdraw(10000, "K2", nil, limits, day(10, 10)))
	assert.ErrorIs(t, w.Withdraw(1, "K3", nil, limits, day(10, 10)), util.ErrDailyLimitExceeded)

	require.NoError(t, w.TransferOut(10000, "bob@example.com", "T1", nil, limits, day(10, 11)))
	assert.ErrorIs(t, w.TransferOut(1, "bob@example.com", "T2", nil, limits, day(10, 11)), util.ErrDailyLimitExceeded)
}

func TestWalletDayRolloverResetsBothAccumulators(t *testing.T) {
	limits := Limits{DailyWithdrawalCents: 10000, DailyTransferOutCents: 10000}
	w := createdWallet(t, "wallet-1")
	require.NoError(t, w.Deposit(100000, "K1", nil, day(10, 9)))
	require.NoError(t, w.TransferOut(10000, "bob@example.com", "T1", nil, limits, day(10, 10)))

	// Next day, a withdrawal happens first. The transfer accumulator from
	// yesterday must not bleed into today.
	require.NoError(t, w.Withdraw(5000, "K2", nil, limits, day(11, 8)))
	require.NoError(t, w.TransferOut(10000, "bob@example.com", "T2", nil, limits, day(11, 9)))
}

// TransferIn takes no limits: incoming money is never capped.
func TestWalletTransferInIsNotCapped(t *testing.T) {
	w := createdWallet(t, "wallet-1")

	require.NoError(t, w.TransferIn(1000000, "alice@example.com", "T1", nil, day(10, 10)))
	require.NoError(t, w.TransferIn(1000000, "alice@example.com", "T2", nil, day(10, 11)))
	assert.Equal(t, int64(2000000), w.BalanceCents())
}

// Replaying the committed stream reproduces the exact state the commands
// built, including the daily accumulators, regardless of when the replay runs.
func TestWalletReplayReproducesState(t *testing.T) {
	w := createdWallet(t, "wallet-1")
	require.NoError(t, w.Deposit(50000, "K1", map[string]string{"source": "pix"}, day(10, 10)))
	require.NoError(t, w.Withdraw(20000, "K2", nil, testLimits, day(10, 11)))
	require.NoError(t, w.TransferOut(5000, "bob@example.com", "T1", nil, testLimits, day(11, 9)))

	stored := asStored(t, "wallet-1", 0, w.PendingEvents())

	replayed := NewWalletAggregate("wallet-1")
	for _, se := range stored {
		require.NoError(t, replayed.ApplyStored(se))
	}

	assert.Equal(t, w.State(), replayed.State())
	assert.Equal(t, int64(25000), replayed.BalanceCents())
	assert.Equal(t, int64(0), replayed.State().DailyWithdrawalCents)
	assert.Equal(t, int64(5000), replayed.State().DailyTransferOutCents)
	assert.Equal(t, "2025-03-11", replayed.State().LastActivityDate)
}

// Restoring from a snapshot and applying the tail yields the same state as a
// full replay from version zero.
func TestWalletSnapshotEquivalentToFullReplay(t *testing.T) {
	w := createdWallet(t, "wallet-1")
	require.NoError(t, w.Deposit(50000, "K1", nil, day(10, 10)))
	require.NoError(t, w.Withdraw(10000, "K2", nil, testLimits, day(10, 11)))
	stored := asStored(t, "wallet-1", 0, w.PendingEvents())
	w.ClearPending()

	snapshotVersion := w.Version()
	snapshot, err := w.SnapshotState()
	require.NoError(t, err)

	require.NoError(t, w.Withdraw(5000, "K3", nil, testLimits, day(10, 12)))
	require.NoError(t, w.Deposit(1000, "K4", nil, day(11, 8)))
	tail := asStored(t, "wallet-1", snapshotVersion, w.PendingEvents())
	stored = append(stored, tail...)

	full := NewWalletAggregate("wallet-1")
	for _, se := range stored {
		require.NoError(t, full.ApplyStored(se))
	}

	fromSnapshot := NewWalletAggregate("wallet-1")
	require.NoError(t, fromSnapshot.RestoreSnapshot(snapshotVersion, snapshot))
	for _, se := range tail {
		require.NoError(t, fromSnapshot.ApplyStored(se))
	}

	assert.Equal(t, full.State(), fromSnapshot.State())
	assert.Equal(t, full.Version(), fromSnapshot.Version())
}

func TestWalletRestoreSnapshotRejectsGarbage(t *testing.T) {
	w := NewWalletAggregate("wallet-1")
	err := w.RestoreSnapshot(3, []byte("{broken"))
	assert.Error(t, err)
}

func TestWalletApplyStoredUnknownKind(t *testing.T) {
	w := NewWalletAggregate("wallet-1")
	err := w.ApplyStored(StoredEvent{
		StreamID: "wallet-1",
		Version:  1,
		Kind:     "money_teleported",
		Payload:  []byte(`{}`),
	})
	assert.Error(t, err)
}
