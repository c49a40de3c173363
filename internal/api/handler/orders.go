// internal/api/handler/orders.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopbot/internal/domain"
	"shopbot/internal/util"
)

// PurchaseRequest represents the request body for a purchase. Price is the
// unit price the buyer was shown; when empty the current catalog price is used.
type PurchaseRequest struct {
	ProductID int64  `json:"product_id"`
	Price     string `json:"price,omitempty"`
}

// StatusRequest represents the request body for a status change.
type StatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

var purchaseStatusCodes = map[domain.PurchaseOutcome]int{
	domain.PurchaseSuccess:             http.StatusCreated,
	domain.PurchaseInsufficientFunds:   http.StatusPaymentRequired,
	domain.PurchaseOutOfStock:          http.StatusConflict,
	domain.PurchaseCodeGenerationFails: http.StatusInternalServerError,
}

// Purchase buys one unit of a product at the requested or current price.
// POST /users/{userID}/purchases
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.ProductID <= 0 {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	price := product.Price
	if req.Price != "" {
		if price, err = util.ParseAmount(req.Price); err != nil {
			h.respondWithError(w, err)
			return
		}
	}

	result, err := h.orders.Purchase(r.Context(), userID, product.ID, price)
	if err != nil && result.Outcome != domain.PurchaseCodeGenerationFails {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, purchaseStatusCodes[result.Outcome], map[string]interface{}{
		"outcome":    result.Outcome,
		"order_code": result.OrderCode(),
		"order":      result.Order,
	})
}

// ListOrders returns every order of a user, newest first.
// GET /users/{userID}/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, orders)
}

// LastOrder returns the user's most recent order.
// GET /users/{userID}/orders/last
func (h *Handler) LastOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	order, err := h.orders.LastOrder(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

// GetOrder looks an order up by its public code.
// GET /orders/{code}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

// ListActiveOrders returns orders that are neither completed nor refunded.
// GET /admin/orders/active
func (h *Handler) ListActiveOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListActiveOrders(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, orders)
}

// SetOrderStatus moves an order to a new status and notifies its owner.
// PUT /admin/orders/{orderID}/status
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := int64Param(r, "orderID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	order, err := h.orders.SetOrderStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.logger.Info("Order status changed", "order_code", order.OrderCode, "status", order.Status)
	h.respondWithJSON(w, http.StatusOK, order)
}
