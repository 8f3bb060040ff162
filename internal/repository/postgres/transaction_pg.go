// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for
// PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a projected history row. The (idempotency_key,
// type) unique constraint plus DO NOTHING makes event re-delivery a no-op:
// the two halves of a transfer share a key but differ in type.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	const query = `INSERT INTO transactions
	               (wallet_id, type, amount_cents, balance_after_cents, related_user_email, idempotency_key, metadata, created_at)
	               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	               ON CONFLICT (idempotency_key, type) DO NOTHING`

	var metadata interface{}
	if len(transaction.Metadata) > 0 {
		metadata = []byte(transaction.Metadata)
	}
	_, err := q.ExecContext(ctx, query,
		transaction.WalletID, transaction.Type, transaction.AmountCents, transaction.BalanceAfterCents,
		transaction.RelatedUserEmail, transaction.IdempotencyKey, metadata, transaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction for wallet %s: %w", transaction.WalletID, err)
	}
	return nil
}

// GetTransactionsByWalletID returns a page of history rows, newest first.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID string, limit, offset int) ([]domain.Transaction, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`
	const listQuery = `SELECT id, wallet_id, type, amount_cents, balance_after_cents, related_user_email, idempotency_key, metadata, created_at
	                   FROM transactions
	                   WHERE wallet_id = $1
	                   ORDER BY created_at DESC, id DESC
	                   LIMIT $2 OFFSET $3`

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, countQuery, walletID); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for wallet %s: %w", walletID, err)
	}

	transactions := []domain.Transaction{}
	if err := q.SelectContext(ctx, &transactions, listQuery, walletID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions for wallet %s: %w", walletID, err)
	}
	return transactions, totalCount, nil
}
