// internal/repository/product_repo.go
package repository

import (
	"context"

	"shopbot/internal/domain"
)

// ProductRepository defines the interface for catalog and inventory operations.
type ProductRepository interface {
	CreateProduct(ctx context.Context, q DBExecutor, product *domain.Product) error
	GetProductByID(ctx context.Context, q DBExecutor, id int64) (*domain.Product, error)
	// ListProducts returns products ordered by ID for stable pagination.
	ListProducts(ctx context.Context, q DBExecutor, limit, offset int) ([]domain.Product, error)
	CountProducts(ctx context.Context, q DBExecutor) (int64, error)
	UpdateProduct(ctx context.Context, q DBExecutor, product *domain.Product) error
	// AddStock increments stock by qty.
	AddStock(ctx context.Context, q DBExecutor, id int64, qty int) (*domain.Product, error)
	// DecrementStockIfAvailable takes one unit only when stock > 0 and reports whether it did.
	DecrementStockIfAvailable(ctx context.Context, q DBExecutor, id int64) (bool, error)
}
