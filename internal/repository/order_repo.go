// internal/repository/order_repo.go
package repository

import (
	"context"

	"shopbot/internal/domain"
)

// OrderRepository defines the interface for order data operations.
type OrderRepository interface {
	// CreateOrder inserts the order. A taken order code yields util.ErrDuplicateEntry
	// and leaves the surrounding transaction usable.
	CreateOrder(ctx context.Context, q DBExecutor, order *domain.Order) error
	GetOrderByID(ctx context.Context, q DBExecutor, id int64) (*domain.OrderDetails, error)
	GetOrderByCode(ctx context.Context, q DBExecutor, code string) (*domain.OrderDetails, error)
	// ListOrdersByUserID returns a user's orders, newest first.
	ListOrdersByUserID(ctx context.Context, q DBExecutor, userID int64) ([]domain.OrderDetails, error)
	GetLastOrderByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.OrderDetails, error)
	// ListActiveOrders returns orders in a non-terminal status, newest first.
	ListActiveOrders(ctx context.Context, q DBExecutor) ([]domain.OrderDetails, error)
	// UpdateOrderStatus moves a non-terminal order to status and reports whether a row changed.
	UpdateOrderStatus(ctx context.Context, q DBExecutor, id int64, status domain.OrderStatus) (bool, error)
}
