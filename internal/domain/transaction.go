// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction descriptions written by the core.
const (
	DescriptionAutoTopUp = "Automatic top-up"
)

// Transaction is one append-only row of a user's balance history.
// Amount is signed: credits are positive, debits negative.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// NewTransaction creates a new Transaction instance.
func NewTransaction(userID int64, amount decimal.Decimal, description string) *Transaction {
	return &Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
