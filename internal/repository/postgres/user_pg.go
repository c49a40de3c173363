// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/internal/util"

	"github.com/shopspring/decimal"
)

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user. An existing user is left untouched.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) (bool, error) {
	query := `INSERT INTO users (id, name, balance, created_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (id) DO NOTHING`
	result, err := q.ExecContext(ctx, query, user.ID, user.Name, user.Balance, user.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create user %d: %w", user.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after creating user %d: %w", user.ID, err)
	}
	return rowsAffected == 1, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, name, balance, created_at FROM users WHERE id = $1`
	err := q.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetBalance returns the balance of a user.
func (r *UserRepository) GetBalance(ctx context.Context, q repository.DBExecutor, id int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.GetContext(ctx, &balance, `SELECT balance FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, util.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get balance for user %d: %w", id, err)
	}
	return balance, nil
}

// AddBalance adds a signed amount to the user's balance.
// The users_balance_non_negative constraint turns an overdraft into ErrInsufficientFunds.
func (r *UserRepository) AddBalance(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, id)
	if err != nil {
		if isCheckViolation(err) {
			return util.ErrInsufficientFunds
		}
		return fmt.Errorf("failed to update balance for user %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating balance for user %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

// DebitIfSufficient performs the guarded debit used by purchases.
func (r *UserRepository) DebitIfSufficient(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) (bool, error) {
	query := `UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`
	result, err := q.ExecContext(ctx, query, amount, id)
	if err != nil {
		return false, fmt.Errorf("failed to debit user %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after debiting user %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}
