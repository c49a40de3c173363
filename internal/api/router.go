// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shopbot/internal/api/handler"
	apimw "shopbot/internal/api/middleware"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h *handler.Handler, adminToken string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.StructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	admin := apimw.AdminOnly(adminToken)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Get("/balance", h.GetBalance)
			r.Get("/transactions", h.GetTransactionHistory)
			r.Post("/topups", h.RequestTopUp)
			r.Post("/purchases", h.Purchase)
			r.Get("/orders", h.ListOrders)
			r.Get("/orders/last", h.LastOrder)
		})
	})

	r.Post("/topups/{label}/confirm", h.ConfirmTopUp)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productID}", h.GetProduct)
		r.With(admin).Post("/", h.AddProduct)
		r.With(admin).Put("/{productID}", h.EditProduct)
		r.With(admin).Post("/{productID}/restock", h.Restock)
	})

	r.Get("/orders/{code}", h.GetOrder)

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin)
		r.Get("/orders/active", h.ListActiveOrders)
		r.Put("/orders/{orderID}/status", h.SetOrderStatus)
	})

	return r
}
