// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It embeds MockDBExecutor so repositories can run on it.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// newMockTxManager wires a TxManager whose transactions are mockTx.
// A non-nil beginErr makes BeginTx fail.
func newMockTxManager(mockTx *MockTxController, beginErr error) TxManager {
	return TxManager{
		Beginner: new(MockDBBeginner),
		BeginTx: func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
			if beginErr != nil {
				return nil, beginErr
			}
			return mockTx, nil
		},
		CommitTx: func(tx db.TxController) error {
			return mockTx.Commit()
		},
		RollbackTx: func(tx db.TxController) {
			_ = mockTx.Rollback()
		},
	}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) (bool, error) {
	args := m.Called(ctx, q, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetBalance(ctx context.Context, q repository.DBExecutor, id int64) (decimal.Decimal, error) {
	args := m.Called(ctx, q, id)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DebitIfSufficient(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, q, id, amount)
	return args.Bool(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockPaymentRepository is a mock implementation of repository.PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreatePaymentIntent(ctx context.Context, q repository.DBExecutor, intent *domain.PaymentIntent) error {
	args := m.Called(ctx, q, intent)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentIntentByLabel(ctx context.Context, q repository.DBExecutor, label string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, q, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *MockPaymentRepository) ListUnpaid(ctx context.Context, q repository.DBExecutor, afterID int64, limit int) ([]domain.PaymentIntent, error) {
	args := m.Called(ctx, q, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentIntent), args.Error(1)
}

func (m *MockPaymentRepository) MarkPaid(ctx context.Context, q repository.DBExecutor, label string) (*domain.PaymentIntent, bool, error) {
	args := m.Called(ctx, q, label)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Bool(1), args.Error(2)
}

// MockProductRepository is a mock implementation of repository.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, q repository.DBExecutor, product *domain.Product) error {
	args := m.Called(ctx, q, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Product, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) ListProducts(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.Product, error) {
	args := m.Called(ctx, q, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) CountProducts(ctx context.Context, q repository.DBExecutor) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, q repository.DBExecutor, product *domain.Product) error {
	args := m.Called(ctx, q, product)
	return args.Error(0)
}

func (m *MockProductRepository) AddStock(ctx context.Context, q repository.DBExecutor, id int64, qty int) (*domain.Product, error) {
	args := m.Called(ctx, q, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementStockIfAvailable(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	args := m.Called(ctx, q, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.OrderDetails, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetails), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByCode(ctx context.Context, q repository.DBExecutor, code string) (*domain.OrderDetails, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetails), args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.OrderDetails, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderDetails), args.Error(1)
}

func (m *MockOrderRepository) GetLastOrderByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.OrderDetails, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetails), args.Error(1)
}

func (m *MockOrderRepository) ListActiveOrders(ctx context.Context, q repository.DBExecutor) ([]domain.OrderDetails, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderDetails), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, q, id, status)
	return args.Bool(0), args.Error(1)
}

// MockProvider is a mock implementation of payment.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) NewPayment(amount decimal.Decimal) (string, string, error) {
	args := m.Called(amount)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockProvider) IsPaid(ctx context.Context, label string) (bool, error) {
	args := m.Called(ctx, label)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int64, text string) error {
	args := m.Called(ctx, userID, text)
	return args.Error(0)
}

// decimalEq matches a decimal argument by value rather than representation.
func decimalEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(want) })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
