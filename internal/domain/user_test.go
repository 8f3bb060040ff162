// internal/domain/user_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerflow-wallet/internal/util"
)

func TestUserCreate(t *testing.T) {
	u := NewUserAggregate("user-1")
	require.NoError(t, u.Create("Alice", "alice@example.com", "hash", day(10, 9)))

	assert.True(t, u.IsCreated())
	assert.Equal(t, "alice@example.com", u.Email())
	assert.Equal(t, int64(1), u.Version())
	require.Len(t, u.PendingEvents(), 1)
	assert.Equal(t, EventUserCreated, u.PendingEvents()[0].Event.Kind())

	err := u.Create("Alice", "alice@example.com", "hash", day(10, 10))
	assert.ErrorIs(t, err, util.ErrAlreadyCreated)
	assert.Len(t, u.PendingEvents(), 1)
}

func TestUserReplay(t *testing.T) {
	u := NewUserAggregate("user-1")
	require.NoError(t, u.Create("Alice", "alice@example.com", "hash", day(10, 9)))
	stored := asStored(t, "user-1", 0, u.PendingEvents())

	replayed := NewUserAggregate("user-1")
	for _, se := range stored {
		require.NoError(t, replayed.ApplyStored(se))
	}
	assert.True(t, replayed.IsCreated())
	assert.Equal(t, "alice@example.com", replayed.Email())
	assert.Equal(t, u.Version(), replayed.Version())
}

func TestUserApplyStoredUnknownKind(t *testing.T) {
	u := NewUserAggregate("user-1")
	err := u.ApplyStored(StoredEvent{StreamID: "user-1", Version: 1, Kind: EventMoneyDeposited, Payload: []byte(`{}`)})
	assert.Error(t, err)
}
