// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/util"
)

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a user row. Re-inserting the same id is a no-op, so the
// projector can re-deliver the creation event after the row was already
// written in the commit transaction; a different id with the same email still
// fails with util.ErrDuplicateEntry via the email unique constraint.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	const query = `INSERT INTO users (id, name, email, password_hash, created_at)
	               VALUES ($1, $2, $3, $4, $5)
	               ON CONFLICT (id) DO NOTHING`

	_, err := q.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == util.ErrDuplicateEntry {
			return fmt.Errorf("user with email %s: %w", user.Email, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user %s: %w", user.ID, err)
	}
	return nil
}

// GetUserByID retrieves a user row by its ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`

	var user domain.User
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user row by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	var user domain.User
	if err := q.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}
