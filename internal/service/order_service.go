// internal/service/order_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"shopbot/internal/domain"
	"shopbot/internal/notify"
	"shopbot/internal/repository"
	"shopbot/internal/util"

	"github.com/shopspring/decimal"
)

// MaxOrderCodeAttempts bounds order code regeneration on collision.
const MaxOrderCodeAttempts = 5

// OrderService runs purchases and the administrator-driven order lifecycle.
type OrderService interface {
	// Purchase debits price, takes one unit of stock and issues an order, all or
	// nothing. Insufficient funds and missing stock are reported as outcomes
	// with a nil error.
	Purchase(ctx context.Context, userID, productID int64, price decimal.Decimal) (domain.PurchaseResult, error)
	GetOrderByID(ctx context.Context, orderID int64) (*domain.OrderDetails, error)
	GetOrderByCode(ctx context.Context, code string) (*domain.OrderDetails, error)
	ListOrders(ctx context.Context, userID int64) ([]domain.OrderDetails, error)
	LastOrder(ctx context.Context, userID int64) (*domain.OrderDetails, error)
	SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.OrderDetails, error)
	SetOrderStatusByCode(ctx context.Context, code string, status domain.OrderStatus) (*domain.OrderDetails, error)
	ListActiveOrders(ctx context.Context) ([]domain.OrderDetails, error)
}

type orderService struct {
	tx              TxManager
	dbExecutor      repository.DBExecutor
	userRepo        repository.UserRepository
	productRepo     repository.ProductRepository
	orderRepo       repository.OrderRepository
	transactionRepo repository.TransactionRepository
	generateCode    util.CodeGenerator
	notifier        notify.Notifier
	logger          *slog.Logger
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	tx TxManager,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	transactionRepo repository.TransactionRepository,
	generateCode util.CodeGenerator,
	notifier notify.Notifier,
	logger *slog.Logger,
) OrderService {
	if generateCode == nil {
		generateCode = util.GenerateOrderCode
	}
	if logger == nil {
		logger = util.GetLogger()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &orderService{
		tx:              tx,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		productRepo:     productRepo,
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		generateCode:    generateCode,
		notifier:        notifier,
		logger:          logger,
	}
}

func (s *orderService) Purchase(ctx context.Context, userID, productID int64, price decimal.Decimal) (domain.PurchaseResult, error) {
	if err := util.ValidatePositiveAmount(price); err != nil {
		return domain.PurchaseResult{}, err
	}

	txController, txExecutor, err := s.tx.begin(ctx)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase: %w", err)
	}
	defer s.tx.RollbackTx(txController)

	debited, err := s.userRepo.DebitIfSufficient(ctx, txExecutor, userID, price)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase: %w", err)
	}
	if !debited {
		return domain.PurchaseResult{Outcome: domain.PurchaseInsufficientFunds}, nil
	}

	reserved, err := s.productRepo.DecrementStockIfAvailable(ctx, txExecutor, productID)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase: %w", err)
	}
	if !reserved {
		return domain.PurchaseResult{Outcome: domain.PurchaseOutOfStock}, nil
	}

	order, err := s.insertOrder(ctx, txExecutor, userID, productID, price)
	if err != nil {
		if util.IsError(err, util.ErrCodeGenerationExhausted) {
			s.logger.Error("Purchase aborted: order codes exhausted",
				"user_id", userID, "product_id", productID, "attempts", MaxOrderCodeAttempts)
			return domain.PurchaseResult{Outcome: domain.PurchaseCodeGenerationFails}, fmt.Errorf("purchase: %w", err)
		}
		return domain.PurchaseResult{}, fmt.Errorf("purchase: %w", err)
	}

	journal := domain.NewTransaction(userID, price.Neg(), "Order "+order.OrderCode)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, journal); err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase: failed to record transaction: %w", err)
	}

	if err := s.tx.CommitTx(txController); err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("purchase: failed to commit transaction: %w", err)
	}

	return domain.PurchaseResult{Outcome: domain.PurchaseSuccess, Order: order}, nil
}

// insertOrder tries fresh codes until one is free or the attempts run out.
func (s *orderService) insertOrder(ctx context.Context, q repository.DBExecutor, userID, productID int64, price decimal.Decimal) (*domain.Order, error) {
	for attempt := 1; attempt <= MaxOrderCodeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}
		order := domain.NewOrder(code, userID, productID, price)
		err = s.orderRepo.CreateOrder(ctx, q, order)
		if err == nil {
			return order, nil
		}
		if !util.IsError(err, util.ErrDuplicateEntry) {
			return nil, err
		}
		s.logger.Warn("Order code collision", "code", code, "attempt", attempt)
	}
	return nil, util.ErrCodeGenerationExhausted
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID int64) (*domain.OrderDetails, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, s.dbExecutor, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrderByCode(ctx context.Context, code string) (*domain.OrderDetails, error) {
	if code == "" {
		return nil, util.ErrInvalidInput
	}
	order, err := s.orderRepo.GetOrderByCode(ctx, s.dbExecutor, code)
	if err != nil {
		return nil, fmt.Errorf("get order by code: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID int64) ([]domain.OrderDetails, error) {
	orders, err := s.orderRepo.ListOrdersByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) LastOrder(ctx context.Context, userID int64) (*domain.OrderDetails, error) {
	order, err := s.orderRepo.GetLastOrderByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("last order: %w", err)
	}
	return order, nil
}

// SetOrderStatus applies an administrator override. Any known status may be
// set on an order that is not yet completed or refunded. The owner is
// notified afterwards; a failed notification is only logged.
func (s *orderService) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.OrderDetails, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", util.ErrInvalidInput, status)
	}

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, s.dbExecutor, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, s.dbExecutor, orderID)
	if err != nil {
		return nil, fmt.Errorf("set order status: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("set order status: order %s is %s: %w", order.OrderCode, order.Status, util.ErrInvalidStatus)
	}

	text := fmt.Sprintf("Order %s (%s): %s", order.OrderCode, order.ProductName, order.Status.Label())
	if err := s.notifier.Notify(ctx, order.UserID, text); err != nil {
		s.logger.Error("Failed to notify user about order status",
			"order_id", order.ID, "user_id", order.UserID, "status", order.Status, "error", err)
	}
	return order, nil
}

func (s *orderService) SetOrderStatusByCode(ctx context.Context, code string, status domain.OrderStatus) (*domain.OrderDetails, error) {
	order, err := s.GetOrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.SetOrderStatus(ctx, order.ID, status)
}

func (s *orderService) ListActiveOrders(ctx context.Context) ([]domain.OrderDetails, error) {
	orders, err := s.orderRepo.ListActiveOrders(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list active orders: %w", err)
	}
	return orders, nil
}
