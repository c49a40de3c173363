// internal/domain/payment.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent is a requested top-up awaiting settlement at the provider.
// Paid flips false to true exactly once, together with the balance credit.
type PaymentIntent struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Label     string          `db:"label" json:"label"`
	Paid      bool            `db:"paid" json:"paid"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	PaidAt    *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
}

// NewPaymentIntent creates an unpaid intent.
func NewPaymentIntent(userID int64, amount decimal.Decimal, label string) *PaymentIntent {
	return &PaymentIntent{
		UserID:    userID,
		Amount:    amount,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
}

// TopUp is what a user receives after requesting a top-up.
type TopUp struct {
	PayURL string          `json:"pay_url"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}
