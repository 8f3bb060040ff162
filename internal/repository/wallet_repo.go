// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"ledgerflow-wallet/internal/domain"
)

// WalletRepository maintains and queries the wallets read model. Writes come
// from the wallet projector; reads serve balance queries and the transfer
// orchestrator's identity resolution (user id -> wallet id).
type WalletRepository interface {
	// CreateWallet inserts a projected wallet row.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet row, or util.ErrNotFound.
	GetWalletByID(ctx context.Context, q DBExecutor, id string) (*domain.Wallet, error)
	// GetWalletByUserID resolves a user's wallet, or util.ErrNotFound.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID string) (*domain.Wallet, error)
	// UpdateWalletBalance sets the projected balance to the value recorded on
	// the event (balance-after, not a delta).
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID string, balanceCents int64) error
}
