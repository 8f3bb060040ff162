// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/util"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository() repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a projected wallet row. Re-delivery of the creation
// event is a no-op.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	const query = `INSERT INTO wallets (id, user_id, currency, balance_cents, created_at, updated_at)
	               VALUES ($1, $2, $3, $4, $5, $6)
	               ON CONFLICT (id) DO NOTHING`

	_, err := q.ExecContext(ctx, query, wallet.ID, wallet.UserID, wallet.Currency, wallet.BalanceCents, wallet.CreatedAt, wallet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wallet %s: %w", wallet.ID, err)
	}
	return nil
}

// GetWalletByID retrieves a wallet row by its ID.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.Wallet, error) {
	const query = `SELECT id, user_id, currency, balance_cents, created_at, updated_at FROM wallets WHERE id = $1`

	var wallet domain.Wallet
	if err := q.GetContext(ctx, &wallet, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %s: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByUserID resolves the wallet owned by a user.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID string) (*domain.Wallet, error) {
	const query = `SELECT id, user_id, currency, balance_cents, created_at, updated_at FROM wallets WHERE user_id = $1`

	var wallet domain.Wallet
	if err := q.GetContext(ctx, &wallet, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %s: %w", userID, err)
	}
	return &wallet, nil
}

// UpdateWalletBalance sets the projected balance to the balance-after value
// recorded on the event.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID string, balanceCents int64) error {
	const query = `UPDATE wallets SET balance_cents = $1, updated_at = $2 WHERE id = $3`

	result, err := q.ExecContext(ctx, query, balanceCents, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for %s: %w", walletID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet %s: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("wallet %s: %w", walletID, util.ErrWalletNotFound)
	}
	return nil
}
