// internal/service/projectors.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
)

// WalletProjector keeps the wallets read model in line with the event log:
// one row per wallet holding the latest projected balance.
type WalletProjector struct {
	walletRepo repository.WalletRepository
}

// NewWalletProjector creates a WalletProjector.
func NewWalletProjector(walletRepo repository.WalletRepository) *WalletProjector {
	return &WalletProjector{walletRepo: walletRepo}
}

func (p *WalletProjector) Name() string { return "wallet" }

func (p *WalletProjector) Handle(ctx context.Context, q repository.DBExecutor, se domain.StoredEvent) error {
	ev, err := se.Decode()
	if err != nil {
		return err
	}
	switch e := ev.(type) {
	case domain.WalletCreated:
		now := time.Now().UTC()
		return p.walletRepo.CreateWallet(ctx, q, &domain.Wallet{
			ID:           e.WalletID,
			UserID:       e.UserID,
			Currency:     e.Currency,
			BalanceCents: 0,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	case domain.MoneyDeposited:
		return p.walletRepo.UpdateWalletBalance(ctx, q, e.WalletID, e.BalanceAfterCents)
	case domain.MoneyWithdrawn:
		return p.walletRepo.UpdateWalletBalance(ctx, q, e.WalletID, e.BalanceAfterCents)
	case domain.MoneyTransferredOut:
		return p.walletRepo.UpdateWalletBalance(ctx, q, e.WalletID, e.BalanceAfterCents)
	case domain.MoneyTransferredIn:
		return p.walletRepo.UpdateWalletBalance(ctx, q, e.WalletID, e.BalanceAfterCents)
	}
	return nil
}

// TransactionProjector appends one history row per money-moving event.
type TransactionProjector struct {
	transactionRepo repository.TransactionRepository
}

// NewTransactionProjector creates a TransactionProjector.
func NewTransactionProjector(transactionRepo repository.TransactionRepository) *TransactionProjector {
	return &TransactionProjector{transactionRepo: transactionRepo}
}

func (p *TransactionProjector) Name() string { return "transaction" }

func (p *TransactionProjector) Handle(ctx context.Context, q repository.DBExecutor, se domain.StoredEvent) error {
	ev, err := se.Decode()
	if err != nil {
		return err
	}
	switch e := ev.(type) {
	case domain.MoneyDeposited:
		return p.transactionRepo.CreateTransaction(ctx, q, &domain.Transaction{
			WalletID:          e.WalletID,
			Type:              domain.TransactionTypeDeposit,
			AmountCents:       e.AmountCents,
			BalanceAfterCents: e.BalanceAfterCents,
			IdempotencyKey:    e.IdempotencyKey,
			Metadata:          encodeMetadata(e.Metadata),
			CreatedAt:         se.OccurredAt,
		})
	case domain.MoneyWithdrawn:
		return p.transactionRepo.CreateTransaction(ctx, q, &domain.Transaction{
			WalletID:          e.WalletID,
			Type:              domain.TransactionTypeWithdrawal,
			AmountCents:       e.AmountCents,
			BalanceAfterCents: e.BalanceAfterCents,
			IdempotencyKey:    e.IdempotencyKey,
			Metadata:          encodeMetadata(e.Metadata),
			CreatedAt:         se.OccurredAt,
		})
	case domain.MoneyTransferredOut:
		return p.transactionRepo.CreateTransaction(ctx, q, &domain.Transaction{
			WalletID:          e.WalletID,
			Type:              domain.TransactionTypeTransferOut,
			AmountCents:       e.AmountCents,
			BalanceAfterCents: e.BalanceAfterCents,
			RelatedUserEmail:  &e.RecipientEmail,
			IdempotencyKey:    e.TransferID,
			Metadata:          encodeMetadata(e.Metadata),
			CreatedAt:         se.OccurredAt,
		})
	case domain.MoneyTransferredIn:
		return p.transactionRepo.CreateTransaction(ctx, q, &domain.Transaction{
			WalletID:          e.WalletID,
			Type:              domain.TransactionTypeTransferIn,
			AmountCents:       e.AmountCents,
			BalanceAfterCents: e.BalanceAfterCents,
			RelatedUserEmail:  &e.SenderEmail,
			IdempotencyKey:    e.TransferID,
			Metadata:          encodeMetadata(e.Metadata),
			CreatedAt:         se.OccurredAt,
		})
	}
	return nil
}

// UserProjector keeps the users read model, which also backs recipient
// resolution by email. On the normal path the row was already written inside
// the commit transaction and the insert is a no-op; the projector matters for
// read-model rebuilds from the event log.
type UserProjector struct {
	userRepo repository.UserRepository
}

// NewUserProjector creates a UserProjector.
func NewUserProjector(userRepo repository.UserRepository) *UserProjector {
	return &UserProjector{userRepo: userRepo}
}

func (p *UserProjector) Name() string { return "user" }

func (p *UserProjector) Handle(ctx context.Context, q repository.DBExecutor, se domain.StoredEvent) error {
	ev, err := se.Decode()
	if err != nil {
		return err
	}
	if e, ok := ev.(domain.UserCreated); ok {
		return p.userRepo.CreateUser(ctx, q, &domain.User{
			ID:           e.UserID,
			Name:         e.Name,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			CreatedAt:    se.OccurredAt,
		})
	}
	return nil
}

func encodeMetadata(metadata map[string]string) json.RawMessage {
	if len(metadata) == 0 {
		return nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil
	}
	return raw
}
