// internal/api/handler/users.go
package handler

import (
	"net/http"

	"shopbot/internal/api/types"
	"shopbot/internal/domain"
	"shopbot/internal/util"
)

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Register handles first contact of a user.
// POST /users
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.ID <= 0 {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	user, err := h.ledger.Register(r.Context(), req.ID, req.Name)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, user)
}

// GetUser returns a registered user.
// GET /users/{userID}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	user, err := h.ledger.GetUser(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, user)
}

// GetBalance returns the balance, zero for unknown users.
// GET /users/{userID}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	balance, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance.StringFixed(2),
	})
}

// GetTransactionHistory returns the user's balance history.
// GET /users/{userID}/transactions
func (h *Handler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	limit := queryInt(r, "limit", 10)
	if limit == 0 {
		limit = 10
	}
	offset := queryInt(r, "offset", 0)

	transactions, total, err := h.ledger.History(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}
