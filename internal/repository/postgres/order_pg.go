// internal/repository/postgres/order_pg.go
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

const orderDetailsSelect = `
	SELECT o.id, o.order_code, o.user_id, o.product_id, o.price_at_purchase,
	       o.status, o.created_at, o.completed_at, p.name AS product_name
	FROM orders o
	JOIN products p ON o.product_id = p.id`

// OrderRepository implements repository.OrderRepository for PostgreSQL.
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository() repository.OrderRepository {
	return &OrderRepository{}
}

// CreateOrder inserts an order inside a savepoint. A unique violation on the
// order code rolls back to the savepoint only, so the caller's debit and stock
// decrement survive and it can retry with another code.
func (r *OrderRepository) CreateOrder(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	if _, err := q.ExecContext(ctx, `SAVEPOINT create_order`); err != nil {
		return fmt.Errorf("failed to set savepoint for order: %w", err)
	}

	query := `INSERT INTO orders (order_code, user_id, product_id, price_at_purchase, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		order.OrderCode,
		order.UserID,
		order.ProductID,
		order.PriceAtPurchase,
		order.Status,
		order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		if _, rbErr := q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT create_order`); rbErr != nil {
			return fmt.Errorf("failed to roll back to order savepoint: %w", rbErr)
		}
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("order code %s: %w", order.OrderCode, util.ErrDuplicateEntry)
		case isForeignKeyViolation(err):
			return fmt.Errorf("order references missing user or product: %w", util.ErrNotFound)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if _, err := q.ExecContext(ctx, `RELEASE SAVEPOINT create_order`); err != nil {
		return fmt.Errorf("failed to release order savepoint: %w", err)
	}
	return nil
}

func (r *OrderRepository) getOne(ctx context.Context, q repository.DBExecutor, where string, arg interface{}) (*domain.OrderDetails, error) {
	var order domain.OrderDetails
	err := q.GetContext(ctx, &order, orderDetailsSelect+" WHERE "+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// GetOrderByID retrieves an order with its product name.
func (r *OrderRepository) GetOrderByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.OrderDetails, error) {
	return r.getOne(ctx, q, "o.id = $1", id)
}

// GetOrderByCode retrieves an order by its shareable code.
func (r *OrderRepository) GetOrderByCode(ctx context.Context, q repository.DBExecutor, code string) (*domain.OrderDetails, error) {
	return r.getOne(ctx, q, "o.order_code = $1", code)
}

// GetLastOrderByUserID returns the most recent order of a user.
func (r *OrderRepository) GetLastOrderByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.OrderDetails, error) {
	return r.getOne(ctx, q, "o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC LIMIT 1", userID)
}

// ListOrdersByUserID returns all orders of a user, newest first.
func (r *OrderRepository) ListOrdersByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.OrderDetails, error) {
	orders := []domain.OrderDetails{}
	query := orderDetailsSelect + ` WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC`
	if err := q.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list orders for user %d: %w", userID, err)
	}
	return orders, nil
}

// ListActiveOrders returns orders that are neither completed nor refunded.
func (r *OrderRepository) ListActiveOrders(ctx context.Context, q repository.DBExecutor) ([]domain.OrderDetails, error) {
	orders := []domain.OrderDetails{}
	query := orderDetailsSelect + ` WHERE o.status NOT IN ($1, $2) ORDER BY o.created_at DESC, o.id DESC`
	if err := q.SelectContext(ctx, &orders, query, domain.OrderStatusCompleted, domain.OrderStatusRefunded); err != nil {
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus writes the new status of a non-terminal order.
// Moving to completed stamps completed_at.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.OrderStatus) (bool, error) {
	query := `UPDATE orders
              SET status = $1,
                  completed_at = CASE WHEN $1::text = $3::text THEN NOW() ELSE completed_at END
              WHERE id = $2 AND status NOT IN ($3, $4)`
	result, err := q.ExecContext(ctx, query, status, id, domain.OrderStatusCompleted, domain.OrderStatusRefunded)
	if err != nil {
		return false, fmt.Errorf("failed to update status of order %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after updating order %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}
