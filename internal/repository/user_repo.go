// internal/repository/user_repo.go
package repository

import (
	"context"

	"ledgerflow-wallet/internal/domain"
)

// UserRepository maintains and queries the users read model. GetUserByEmail
// backs the transfer orchestrator's recipient resolution.
type UserRepository interface {
	// CreateUser inserts a user row, idempotent on id. A duplicate email
	// fails with util.ErrDuplicateEntry.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user row, or util.ErrNotFound.
	GetUserByID(ctx context.Context, q DBExecutor, id string) (*domain.User, error)
	// GetUserByEmail retrieves a user row by email, or util.ErrNotFound.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
}
