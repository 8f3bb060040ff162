// internal/service/projection_test.go
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/util"
)

func storedFor(t *testing.T, walletID string, version int64, ev domain.Event) domain.StoredEvent {
	t.Helper()
	payload, err := domain.EncodeEvent(ev)
	require.NoError(t, err)
	return domain.StoredEvent{
		ID:         fmt.Sprintf("evt-%d", version),
		StreamID:   walletID,
		Version:    version,
		Kind:       ev.Kind(),
		Payload:    payload,
		OccurredAt: fixedNow,
	}
}

func TestWalletProjector(t *testing.T) {
	repo := new(MockWalletRepository)
	p := NewWalletProjector(repo)
	ctx := context.Background()

	repo.On("CreateWallet", mock.Anything, mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool {
		return w.ID == "wallet-1" && w.UserID == "user-1" && w.BalanceCents == 0
	})).Return(nil)
	err := p.Handle(ctx, stubTx{}, storedFor(t, "wallet-1", 1,
		domain.WalletCreated{WalletID: "wallet-1", UserID: "user-1", Currency: "BRL"}))
	require.NoError(t, err)

	repo.On("UpdateWalletBalance", mock.Anything, mock.Anything, "wallet-1", int64(50000)).Return(nil)
	err = p.Handle(ctx, stubTx{}, storedFor(t, "wallet-1", 2,
		domain.MoneyDeposited{WalletID: "wallet-1", AmountCents: 50000, BalanceAfterCents: 50000, IdempotencyKey: "K1"}))
	require.NoError(t, err)

	// Events for other aggregates pass through untouched.
	err = p.Handle(ctx, stubTx{}, storedFor(t, "user-1", 1,
		domain.UserCreated{UserID: "user-1", Email: "alice@example.com"}))
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestTransactionProjector(t *testing.T) {
	repo := new(MockTransactionRepository)
	p := NewTransactionProjector(repo)
	ctx := context.Background()

	repo.On("CreateTransaction", mock.Anything, mock.Anything, mock.MatchedBy(func(tx *domain.Transaction) bool {
		return tx.WalletID == "wallet-1" &&
			tx.Type == domain.TransactionTypeTransferOut &&
			tx.AmountCents == 10000 &&
			tx.IdempotencyKey == "T1" &&
			tx.RelatedUserEmail != nil && *tx.RelatedUserEmail == "bob@example.com" &&
			tx.CreatedAt.Equal(fixedNow)
	})).Return(nil)

	err := p.Handle(ctx, stubTx{}, storedFor(t, "wallet-1", 3, domain.MoneyTransferredOut{
		WalletID:          "wallet-1",
		AmountCents:       10000,
		BalanceAfterCents: 40000,
		RecipientEmail:    "bob@example.com",
		TransferID:        "T1",
	}))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUserProjector(t *testing.T) {
	repo := new(MockUserRepository)
	p := NewUserProjector(repo)

	repo.On("CreateUser", mock.Anything, mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "user-1" && u.Email == "alice@example.com" && u.PasswordHash == "hash"
	})).Return(nil)

	err := p.Handle(context.Background(), stubTx{}, storedFor(t, "user-1", 1,
		domain.UserCreated{UserID: "user-1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// A failing projector is logged and skipped; later projectors and events
// still run.
func TestDispatcherContinuesPastProjectorFailure(t *testing.T) {
	walletRepo := new(MockWalletRepository)
	transactionRepo := new(MockTransactionRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := NewProjectionDispatcher(stubTx{}, logger,
		NewWalletProjector(walletRepo),
		NewTransactionProjector(transactionRepo),
	)

	se := storedFor(t, "wallet-1", 2,
		domain.MoneyDeposited{WalletID: "wallet-1", AmountCents: 100, BalanceAfterCents: 100, IdempotencyKey: "K1"})

	walletRepo.On("UpdateWalletBalance", mock.Anything, mock.Anything, "wallet-1", int64(100)).
		Return(util.ErrWalletNotFound)
	transactionRepo.On("CreateTransaction", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	d.Deliver(context.Background(), []domain.StoredEvent{se})

	walletRepo.AssertExpectations(t)
	transactionRepo.AssertExpectations(t)
}
