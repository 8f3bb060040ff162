// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"ledgerflow-wallet/internal/domain"
)

// TransactionRepository maintains and queries the per-wallet transaction
// history read model.
type TransactionRepository interface {
	// CreateTransaction inserts a projected history row. Re-delivery of the
	// same event is a no-op.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByWalletID returns a page of history rows, newest first,
	// plus the total count for pagination.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID string, limit, offset int) ([]domain.Transaction, int64, error)
}
