// internal/api/handler/catalog.go
package handler

import (
	"net/http"

	"shopbot/internal/service"
	"shopbot/internal/util"
)

// RestockRequest represents the request body for a restock.
type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// ListProducts returns one catalog page. Pages start at 1.
// GET /products?page=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	result, err := h.catalog.ListProducts(r.Context(), page-1)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":        result.Products,
		"page":        result.Page + 1,
		"page_size":   result.PageSize,
		"total_count": result.TotalCount,
		"has_next":    result.HasNext(),
	})
}

// GetProduct returns a single product.
// GET /products/{productID}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := int64Param(r, "productID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

// AddProduct creates a catalog entry.
// POST /products
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondWithError(w, err)
		return
	}
	product, err := h.catalog.AddProduct(r.Context(), in)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.logger.Info("Product added", "product_id", product.ID, "name", product.Name)
	h.respondWithJSON(w, http.StatusCreated, product)
}

// EditProduct replaces the editable fields of a product.
// PUT /products/{productID}
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := int64Param(r, "productID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var in service.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		h.respondWithError(w, err)
		return
	}
	product, err := h.catalog.EditProduct(r.Context(), productID, in)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

// Restock adds units to a product's stock.
// POST /products/{productID}/restock
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, err := int64Param(r, "productID")
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req RestockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.Quantity <= 0 {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	product, err := h.catalog.Restock(r.Context(), productID, req.Quantity)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}
