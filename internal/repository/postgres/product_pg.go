// internal/repository/postgres/product_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/internal/util"
)

const productColumns = `id, type, name, description, price, stock, created_at, updated_at`

// ProductRepository implements repository.ProductRepository for PostgreSQL.
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository() repository.ProductRepository {
	return &ProductRepository{}
}

// CreateProduct inserts a product. Names are unique.
func (r *ProductRepository) CreateProduct(ctx context.Context, q repository.DBExecutor, product *domain.Product) error {
	query := `INSERT INTO products (type, name, description, price, stock, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		product.Type,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %q: %w", product.Name, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetProductByID retrieves a product by its ID.
func (r *ProductRepository) GetProductByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Product, error) {
	var product domain.Product
	err := q.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// ListProducts returns a page of products ordered by ID.
func (r *ProductRepository) ListProducts(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.Product, error) {
	products := []domain.Product{}
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`
	if err := q.SelectContext(ctx, &products, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CountProducts returns the number of catalog records.
func (r *ProductRepository) CountProducts(ctx context.Context, q repository.DBExecutor) (int64, error) {
	var count int64
	if err := q.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// UpdateProduct overwrites every editable field of a product.
func (r *ProductRepository) UpdateProduct(ctx context.Context, q repository.DBExecutor, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()
	query := `UPDATE products
              SET type = $2, name = $3, description = $4, price = $5, stock = $6, updated_at = $7
              WHERE id = $1`
	result, err := q.ExecContext(ctx, query,
		product.ID,
		product.Type,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("product %q: %w", product.Name, util.ErrDuplicateEntry)
		case isCheckViolation(err):
			return fmt.Errorf("product %d: %w", product.ID, util.ErrInvalidInput)
		}
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating product %d: %w", product.ID, err)
	}
	if rowsAffected == 0 {
		return util.ErrProductNotFound
	}
	return nil
}

// AddStock increments stock and returns the updated product.
func (r *ProductRepository) AddStock(ctx context.Context, q repository.DBExecutor, id int64, qty int) (*domain.Product, error) {
	var product domain.Product
	query := `UPDATE products SET stock = stock + $1, updated_at = NOW()
              WHERE id = $2
              RETURNING ` + productColumns
	err := q.GetContext(ctx, &product, query, qty, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, util.ErrProductNotFound
		case isCheckViolation(err):
			return nil, util.ErrOutOfStock
		}
		return nil, fmt.Errorf("failed to add stock to product %d: %w", id, err)
	}
	return &product, nil
}

// DecrementStockIfAvailable performs the guarded stock decrement used by purchases.
func (r *ProductRepository) DecrementStockIfAvailable(ctx context.Context, q repository.DBExecutor, id int64) (bool, error) {
	result, err := q.ExecContext(ctx, `UPDATE products SET stock = stock - 1 WHERE id = $1 AND stock > 0`, id)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock of product %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected after decrementing stock of product %d: %w", id, err)
	}
	return rowsAffected == 1, nil
}
