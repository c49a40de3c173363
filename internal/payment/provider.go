// internal/payment/provider.go
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider is the external payment provider. It is eventually consistent:
// a payment made through a link shows up in the operation history later.
type Provider interface {
	// NewPayment builds a payable link for amount and returns it with a fresh unique label.
	NewPayment(amount decimal.Decimal) (payURL string, label string, err error)
	// IsPaid reports whether the provider holds a successful operation carrying label.
	IsPaid(ctx context.Context, label string) (bool, error)
}
