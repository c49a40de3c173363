// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/internal/util"

	"github.com/shopspring/decimal"
)

// LedgerService owns user balances and their append-only transaction history.
type LedgerService interface {
	Register(ctx context.Context, userID int64, name string) (*domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	// GetBalance returns zero for users that never registered.
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	// Credit adds a signed amount and records it as one transaction, atomically.
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
}

type ledgerService struct {
	tx              TxManager
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	tx TxManager,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
) LedgerService {
	return &ledgerService{
		tx:              tx,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
	}
}

// Register creates the user on first contact. Registering twice is a no-op.
func (s *ledgerService) Register(ctx context.Context, userID int64, name string) (*domain.User, error) {
	if userID == 0 {
		return nil, util.ErrInvalidInput
	}
	user := domain.NewUser(userID, strings.TrimSpace(name))
	if _, err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	registered, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("register: failed to re-fetch user %d: %w", userID, err)
	}
	return registered, nil
}

func (s *ledgerService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	balance, err := s.userRepo.GetBalance(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrUserNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (s *ledgerService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	if amount.IsZero() {
		return nil, util.ErrInvalidInput
	}

	txController, txExecutor, err := s.tx.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}
	defer s.tx.RollbackTx(txController)

	transaction, err := applyCredit(ctx, txExecutor, s.userRepo, s.transactionRepo, userID, amount, description)
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
	}

	if err := s.tx.CommitTx(txController); err != nil {
		return nil, fmt.Errorf("credit: failed to commit transaction: %w", err)
	}
	return transaction, nil
}

func (s *ledgerService) History(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	if limit <= 0 || offset < 0 {
		return nil, 0, util.ErrInvalidInput
	}
	transactions, total, err := s.transactionRepo.GetTransactionsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("history: %w", err)
	}
	return transactions, total, nil
}

// applyCredit is the balance-plus-journal step shared by every credit path.
// It must run on a transaction executor.
func applyCredit(
	ctx context.Context,
	q repository.DBExecutor,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	userID int64,
	amount decimal.Decimal,
	description string,
) (*domain.Transaction, error) {
	if err := userRepo.AddBalance(ctx, q, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to update balance of user %d: %w", userID, err)
	}
	transaction := domain.NewTransaction(userID, amount, description)
	if err := transactionRepo.CreateTransaction(ctx, q, transaction); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	return transaction, nil
}
