// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/internal/util"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, amount, description, created_at)
              VALUES ($1, $2, $3, $4) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.UserID,
		transaction.Amount,
		transaction.Description,
		transaction.CreatedAt,
	).Scan(&transaction.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return util.ErrUserNotFound
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByUserID retrieves a paginated list of transactions for a user.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, user_id, amount, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for user %d: %w", userID, err)
	}

	return transactions, totalCount, nil
}
