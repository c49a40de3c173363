// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"shopbot/internal/domain"
)

// TransactionRepository defines the interface for transaction data operations.
type TransactionRepository interface {
	// CreateTransaction appends a transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionsByUserID retrieves a page of a user's history and the total row count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
}
