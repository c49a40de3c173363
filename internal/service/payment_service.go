// internal/service/payment_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"shopbot/internal/domain"
	"shopbot/internal/payment"
	"shopbot/internal/repository"
	"shopbot/internal/util"

	"github.com/shopspring/decimal"
)

// DefaultConfirmTimeout bounds one provider lookup.
const DefaultConfirmTimeout = 15 * time.Second

// PaymentService turns top-up requests into payment intents and settles them
// once the provider confirms.
type PaymentService interface {
	RequestTopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.TopUp, error)
	// ConfirmTopUp asks the provider about label and, on success, flips the intent
	// and credits the user in one transaction. It returns true only for the call
	// that actually credited; any later call for the same label returns false.
	ConfirmTopUp(ctx context.Context, label string) (bool, error)
	PendingIntents(ctx context.Context, afterID int64, limit int) ([]domain.PaymentIntent, error)
	GetIntent(ctx context.Context, label string) (*domain.PaymentIntent, error)
}

type paymentService struct {
	tx              TxManager
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
	paymentRepo     repository.PaymentRepository
	provider        payment.Provider
	confirmTimeout  time.Duration
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	tx TxManager,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	paymentRepo repository.PaymentRepository,
	provider payment.Provider,
	confirmTimeout time.Duration,
) PaymentService {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &paymentService{
		tx:              tx,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		paymentRepo:     paymentRepo,
		provider:        provider,
		confirmTimeout:  confirmTimeout,
	}
}

// RequestTopUp creates a payable link and stores the unpaid intent. The
// ledger is not touched until the provider confirms.
func (s *paymentService) RequestTopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.TopUp, error) {
	if err := util.ValidatePositiveAmount(amount); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		return nil, fmt.Errorf("request top-up: %w", err)
	}

	payURL, label, err := s.provider.NewPayment(amount)
	if err != nil {
		return nil, fmt.Errorf("request top-up: failed to create payment link: %w", err)
	}

	intent := domain.NewPaymentIntent(userID, amount, label)
	if err := s.paymentRepo.CreatePaymentIntent(ctx, s.dbExecutor, intent); err != nil {
		return nil, fmt.Errorf("request top-up: %w", err)
	}

	return &domain.TopUp{PayURL: payURL, Label: label, Amount: amount}, nil
}

func (s *paymentService) ConfirmTopUp(ctx context.Context, label string) (bool, error) {
	intent, err := s.paymentRepo.GetPaymentIntentByLabel(ctx, s.dbExecutor, label)
	if err != nil {
		return false, fmt.Errorf("confirm top-up: %w", err)
	}
	if intent.Paid {
		return false, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	paid, err := s.provider.IsPaid(lookupCtx, label)
	cancel()
	if err != nil {
		return false, fmt.Errorf("confirm top-up %s: %w", label, err)
	}
	if !paid {
		return false, nil
	}

	txController, txExecutor, err := s.tx.begin(ctx)
	if err != nil {
		return false, fmt.Errorf("confirm top-up: %w", err)
	}
	defer s.tx.RollbackTx(txController)

	flipped, changed, err := s.paymentRepo.MarkPaid(ctx, txExecutor, label)
	if err != nil {
		return false, fmt.Errorf("confirm top-up: %w", err)
	}
	if !changed {
		// A concurrent confirmation already credited this intent.
		return false, nil
	}

	if _, err := applyCredit(ctx, txExecutor, s.userRepo, s.transactionRepo, flipped.UserID, flipped.Amount, domain.DescriptionAutoTopUp); err != nil {
		return false, fmt.Errorf("confirm top-up: %w", err)
	}

	if err := s.tx.CommitTx(txController); err != nil {
		return false, fmt.Errorf("confirm top-up: failed to commit transaction: %w", err)
	}
	return true, nil
}

func (s *paymentService) PendingIntents(ctx context.Context, afterID int64, limit int) ([]domain.PaymentIntent, error) {
	if limit <= 0 || afterID < 0 {
		return nil, util.ErrInvalidInput
	}
	intents, err := s.paymentRepo.ListUnpaid(ctx, s.dbExecutor, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("pending intents: %w", err)
	}
	return intents, nil
}

func (s *paymentService) GetIntent(ctx context.Context, label string) (*domain.PaymentIntent, error) {
	intent, err := s.paymentRepo.GetPaymentIntentByLabel(ctx, s.dbExecutor, label)
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}
	return intent, nil
}
