// internal/api/handler/handler.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"shopbot/internal/api/types"
	"shopbot/internal/service"
	"shopbot/internal/util"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Handler serves the core operations over HTTP.
type Handler struct {
	ledger   service.LedgerService
	payments service.PaymentService
	catalog  service.CatalogService
	orders   service.OrderService
	logger   *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(
	ledger service.LedgerService,
	payments service.PaymentService,
	catalog service.CatalogService,
	orders service.OrderService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		ledger:   ledger,
		payments: payments,
		catalog:  catalog,
		orders:   orders,
		logger:   logger,
	}
}

// Helper function to send JSON responses.
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrUserNotFound),
		util.IsError(err, util.ErrProductNotFound),
		util.IsError(err, util.ErrOrderNotFound),
		util.IsError(err, util.ErrPaymentNotFound),
		util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = "Insufficient funds"
	case util.IsError(err, util.ErrOutOfStock):
		statusCode = http.StatusConflict
		message = "Out of stock"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Already exists"
	case util.IsError(err, util.ErrInvalidStatus):
		statusCode = http.StatusConflict
		message = "Order status cannot be changed"
	case util.IsError(err, util.ErrProviderUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Payment provider unavailable"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return util.ErrInvalidInput
	}
	return nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// queryInt reads a non-negative integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return def
	}
	return n
}
