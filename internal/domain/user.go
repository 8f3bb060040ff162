// internal/domain/user.go
package domain

import (
	"fmt"
	"time"

	"ledgerflow-wallet/internal/util"
)

// UserAggregate enforces create-once semantics for account identity.
// It carries no further mutation: a user exists or it does not.
type UserAggregate struct {
	id        string
	email     string
	isCreated bool
	version   int64
	pending   []RecordedEvent
}

// NewUserAggregate returns an uninitialized user aggregate for the stream id.
func NewUserAggregate(id string) *UserAggregate {
	return &UserAggregate{id: id}
}

// ID returns the aggregate id.
func (u *UserAggregate) ID() string { return u.id }

// Email returns the user's email, empty until created.
func (u *UserAggregate) Email() string { return u.email }

// IsCreated reports whether the user has been created.
func (u *UserAggregate) IsCreated() bool { return u.isCreated }

// Version returns the current aggregate version including staged events.
func (u *UserAggregate) Version() int64 { return u.version }

// PendingEvents returns the staged events awaiting durable commit.
func (u *UserAggregate) PendingEvents() []RecordedEvent { return u.pending }

// ClearPending drops staged events after a successful commit.
func (u *UserAggregate) ClearPending() { u.pending = nil }

// Create records the user's creation. A second call on the same id fails.
func (u *UserAggregate) Create(name, email, passwordHash string, now time.Time) error {
	if u.isCreated {
		return fmt.Errorf("user %s: %w", u.id, util.ErrAlreadyCreated)
	}
	ev := UserCreated{
		UserID:       u.id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := u.apply(ev); err != nil {
		return err
	}
	u.version++
	u.pending = append(u.pending, RecordedEvent{Event: ev, OccurredAt: now})
	return nil
}

// ApplyStored replays one committed event from the stream.
func (u *UserAggregate) ApplyStored(se StoredEvent) error {
	ev, err := se.Decode()
	if err != nil {
		return err
	}
	if err := u.apply(ev); err != nil {
		return err
	}
	u.version = se.Version
	return nil
}

func (u *UserAggregate) apply(ev Event) error {
	switch e := ev.(type) {
	case UserCreated:
		u.isCreated = true
		u.email = e.Email
	default:
		return fmt.Errorf("user %s: no handler for event kind %q", u.id, ev.Kind())
	}
	return nil
}
