// internal/domain/order.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusPacking   OrderStatus = "packing"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPaid:      "✅ Paid",
	OrderStatusPacking:   "📦 Packing",
	OrderStatusShipping:  "🚚 Shipping",
	OrderStatusDelivered: "🏢 Delivered",
	OrderStatusCompleted: "🏁 Received",
	OrderStatusRefunded:  "🔄 Refunded",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRefunded
}

// Label is the human readable status shown to users.
func (s OrderStatus) Label() string {
	if l, ok := orderStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Order is a purchase. PriceAtPurchase is a snapshot and never changes.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	OrderCode       string          `db:"order_code" json:"order_code"`
	UserID          int64           `db:"user_id" json:"user_id"`
	ProductID       int64           `db:"product_id" json:"product_id"`
	PriceAtPurchase decimal.Decimal `db:"price_at_purchase" json:"price_at_purchase"`
	Status          OrderStatus     `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	CompletedAt     *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}

// OrderDetails is an order joined with the name of the purchased product.
type OrderDetails struct {
	Order
	ProductName string `db:"product_name" json:"product_name"`
}

// NewOrder creates a freshly paid order.
func NewOrder(code string, userID, productID int64, price decimal.Decimal) *Order {
	return &Order{
		OrderCode:       code,
		UserID:          userID,
		ProductID:       productID,
		PriceAtPurchase: price,
		Status:          OrderStatusPaid,
		CreatedAt:       time.Now().UTC(),
	}
}

// PurchaseOutcome is the result value of a purchase attempt.
type PurchaseOutcome string

const (
	PurchaseSuccess             PurchaseOutcome = "success"
	PurchaseInsufficientFunds   PurchaseOutcome = "insufficient_funds"
	PurchaseOutOfStock          PurchaseOutcome = "out_of_stock"
	PurchaseCodeGenerationFails PurchaseOutcome = "could_not_generate_unique_code"
)

// PurchaseResult carries the outcome and, on success, the new order.
type PurchaseResult struct {
	Outcome PurchaseOutcome `json:"outcome"`
	Order   *Order          `json:"order,omitempty"`
}

// OrderCode returns the code of the created order or "".
func (r PurchaseResult) OrderCode() string {
	if r.Order == nil {
		return ""
	}
	return r.Order.OrderCode
}
