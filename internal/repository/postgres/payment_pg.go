// internal/repository/postgres/payment_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/internal/util"
)

const paymentColumns = `id, user_id, amount, label, paid, created_at, paid_at`

// PaymentRepository implements repository.PaymentRepository for PostgreSQL.
type PaymentRepository struct{}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository() repository.PaymentRepository {
	return &PaymentRepository{}
}

// CreatePaymentIntent stores an unpaid intent.
func (r *PaymentRepository) CreatePaymentIntent(ctx context.Context, q repository.DBExecutor, intent *domain.PaymentIntent) error {
	query := `INSERT INTO payment_intents (user_id, amount, label, paid, created_at)
              VALUES ($1, $2, $3, FALSE, $4) RETURNING id`
	err := q.QueryRowContext(ctx, query, intent.UserID, intent.Amount, intent.Label, intent.CreatedAt).Scan(&intent.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("payment label %q: %w", intent.Label, util.ErrDuplicateEntry)
		case isForeignKeyViolation(err):
			return util.ErrUserNotFound
		}
		return fmt.Errorf("failed to create payment intent: %w", err)
	}
	intent.Paid = false
	return nil
}

// GetPaymentIntentByLabel retrieves an intent by its external label.
func (r *PaymentRepository) GetPaymentIntentByLabel(ctx context.Context, q repository.DBExecutor, label string) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	err := q.GetContext(ctx, &intent, `SELECT `+paymentColumns+` FROM payment_intents WHERE label = $1`, label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment intent %q: %w", label, err)
	}
	return &intent, nil
}

// ListUnpaid returns one keyset page of unpaid intents, oldest first.
func (r *PaymentRepository) ListUnpaid(ctx context.Context, q repository.DBExecutor, afterID int64, limit int) ([]domain.PaymentIntent, error) {
	intents := []domain.PaymentIntent{}
	query := `SELECT ` + paymentColumns + ` FROM payment_intents
              WHERE paid = FALSE AND id > $1
              ORDER BY id LIMIT $2`
	if err := q.SelectContext(ctx, &intents, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("failed to list unpaid payment intents: %w", err)
	}
	return intents, nil
}

// MarkPaid is the guarded flip: only the first caller for a label gets a row back.
func (r *PaymentRepository) MarkPaid(ctx context.Context, q repository.DBExecutor, label string) (*domain.PaymentIntent, bool, error) {
	var intent domain.PaymentIntent
	query := `UPDATE payment_intents SET paid = TRUE, paid_at = NOW()
              WHERE label = $1 AND paid = FALSE
              RETURNING ` + paymentColumns
	err := q.GetContext(ctx, &intent, query, label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to mark payment intent %q paid: %w", label, err)
	}
	return &intent, true, nil
}
