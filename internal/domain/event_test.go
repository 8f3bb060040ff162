// internal/domain/event_test.go
package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleEvent returns a populated event of the given kind.
func sampleEvent(t *testing.T, kind string) Event {
	t.Helper()
	switch kind {
	case EventWalletCreated:
		return WalletCreated{WalletID: "wallet-1", UserID: "user-1", Currency: "BRL"}
	case EventMoneyDeposited:
		return MoneyDeposited{WalletID: "wallet-1", AmountCents: 50000, BalanceAfterCents: 50000, IdempotencyKey: "K1", Metadata: map[string]string{"source": "pix"}}
	case EventMoneyWithdrawn:
		return MoneyWithdrawn{WalletID: "wallet-1", AmountCents: 20000, BalanceAfterCents: 30000, IdempotencyKey: "K2"}
	case EventMoneyTransferredOut:
		return MoneyTransferredOut{WalletID: "wallet-1", AmountCents: 1000, BalanceAfterCents: 29000, RecipientEmail: "bob@example.com", TransferID: "T1"}
	case EventMoneyTransferredIn:
		return MoneyTransferredIn{WalletID: "wallet-2", AmountCents: 1000, BalanceAfterCents: 1000, SenderEmail: "alice@example.com", TransferID: "T1"}
	case EventUserCreated:
		return UserCreated{UserID: "user-1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	default:
		t.Fatalf("no sample for kind %q", kind)
		return nil
	}
}

// Every kind in EventKinds must survive an encode/decode round trip. A kind
// added without a DecodeEvent case fails here instead of failing silently
// during replay.
func TestEventCodecCoversAllKinds(t *testing.T) {
	for _, kind := range EventKinds {
		t.Run(kind, func(t *testing.T) {
			ev := sampleEvent(t, kind)
			assert.Equal(t, kind, ev.Kind())

			payload, err := EncodeEvent(ev)
			require.NoError(t, err)

			decoded, err := DecodeEvent(kind, payload)
			require.NoError(t, err)
			assert.Equal(t, ev, decoded)
		})
	}
}

// Every kind a wallet stream can carry must have a case in the apply switch.
func TestWalletApplyCoversWalletKinds(t *testing.T) {
	state := WalletState{ID: "wallet-1", IsCreated: true, BalanceCents: 100000, Currency: "BRL"}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, kind := range EventKinds {
		if kind == EventUserCreated {
			continue
		}
		_, err := applyWalletEvent(state, sampleEvent(t, kind), now)
		assert.NoError(t, err, "kind %s", kind)
	}
}

func TestDecodeEventUnknownKind(t *testing.T) {
	_, err := DecodeEvent("money_teleported", json.RawMessage(`{}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestDecodeEventMalformedPayload(t *testing.T) {
	_, err := DecodeEvent(EventMoneyDeposited, json.RawMessage(`{not json`))
	assert.Error(t, err)
}

func TestStoredEventDecode(t *testing.T) {
	ev := MoneyDeposited{WalletID: "wallet-1", AmountCents: 100, BalanceAfterCents: 100, IdempotencyKey: "K1"}
	payload, err := EncodeEvent(ev)
	require.NoError(t, err)

	se := StoredEvent{
		ID:         "evt-1",
		StreamID:   "wallet-1",
		Version:    1,
		Kind:       ev.Kind(),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
	decoded, err := se.Decode()
	require.NoError(t, err)
	assert.Equal(t, ev, decoded)
}
