// internal/repository/user_repo.go
package repository

import (
	"context"

	"shopbot/internal/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user and balance data operations.
type UserRepository interface {
	// CreateUser inserts the user unless one with the same ID exists. It reports whether a row was created.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) (bool, error)
	// GetUserByID retrieves a user by their ID.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetBalance returns the current balance of a user.
	GetBalance(ctx context.Context, q DBExecutor, id int64) (decimal.Decimal, error)
	// AddBalance adds a signed amount to the balance. The store rejects a negative result.
	AddBalance(ctx context.Context, q DBExecutor, id int64, amount decimal.Decimal) error
	// DebitIfSufficient subtracts amount only when balance >= amount and reports whether it did.
	DebitIfSufficient(ctx context.Context, q DBExecutor, id int64, amount decimal.Decimal) (bool, error)
}
