// internal/api/handler/payments.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopbot/internal/util"
)

// TopUpRequest represents the request body for a top-up. Amount is the raw
// user input, so "150,50" is accepted.
type TopUpRequest struct {
	Amount string `json:"amount"`
}

// RequestTopUp creates a payment link for the user.
// POST /users/{userID}/topups
func (h *Handler) RequestTopUp(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "userID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req TopUpRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	topUp, err := h.payments.RequestTopUp(r.Context(), userID, amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, topUp)
}

// ConfirmTopUp checks the provider for a payment now instead of waiting for
// the next reconciliation pass.
// POST /topups/{label}/confirm
func (h *Handler) ConfirmTopUp(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")
	if label == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	credited, err := h.payments.ConfirmTopUp(r.Context(), label)
	if err != nil {
		if util.IsError(err, util.ErrPaymentNotFound) {
			h.respondWithError(w, err)
			return
		}
		// Provider trouble means "not yet confirmed".
		h.logger.Warn("Top-up confirmation failed", "label", label, "error", err)
		credited = false
	}

	intent, err := h.payments.GetIntent(r.Context(), label)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"label":    intent.Label,
		"paid":     intent.Paid,
		"credited": credited,
		"amount":   intent.Amount.StringFixed(2),
	})
}
