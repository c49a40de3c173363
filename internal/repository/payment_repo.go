// internal/repository/payment_repo.go
package repository

import (
	"context"

	"shopbot/internal/domain"
)

// PaymentRepository defines the interface for payment intent data operations.
type PaymentRepository interface {
	CreatePaymentIntent(ctx context.Context, q DBExecutor, intent *domain.PaymentIntent) error
	GetPaymentIntentByLabel(ctx context.Context, q DBExecutor, label string) (*domain.PaymentIntent, error)
	// ListUnpaid returns up to limit unpaid intents with id greater than afterID,
	// ordered by id. Pass 0 to start from the beginning.
	ListUnpaid(ctx context.Context, q DBExecutor, afterID int64, limit int) ([]domain.PaymentIntent, error)
	// MarkPaid flips paid to true only while it is still false. The returned
	// bool is false when nothing changed, in which case the intent must not be credited.
	MarkPaid(ctx context.Context, q DBExecutor, label string) (*domain.PaymentIntent, bool, error)
}
