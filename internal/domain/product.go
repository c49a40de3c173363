// internal/domain/product.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog record. Stock only moves through guarded updates.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Type        string          `db:"type" json:"type"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// NewProduct creates a new Product instance.
func NewProduct(productType, name, description string, price decimal.Decimal, stock int) *Product {
	now := time.Now().UTC()
	return &Product{
		Type:        productType,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
