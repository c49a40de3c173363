// internal/service/catalog_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"shopbot/internal/domain"
	"shopbot/internal/repository"
	"shopbot/internal/util"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is the number of products per catalog page.
const DefaultPageSize = 5

// ProductInput carries the administrator-editable fields of a product.
type ProductInput struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// Validate checks field bounds before anything reaches the store.
func (in *ProductInput) Validate() error {
	in.Type = strings.TrimSpace(in.Type)
	in.Name = strings.TrimSpace(in.Name)
	if err := util.ValidateText("type", in.Type, util.MaxProductTypeLen); err != nil {
		return err
	}
	if err := util.ValidateText("name", in.Name, util.MaxProductNameLen); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Description) > util.MaxProductDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", util.ErrInvalidInput, util.MaxProductDescriptionLen)
	}
	if err := util.ValidatePositiveAmount(in.Price); err != nil {
		return err
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", util.ErrInvalidInput)
	}
	return nil
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Products   []domain.Product
	Page       int
	PageSize   int
	TotalCount int64
}

// HasNext reports whether another page follows.
func (p *ProductPage) HasNext() bool {
	return int64((p.Page+1)*p.PageSize) < p.TotalCount
}

// CatalogService owns product records and stock counts.
type CatalogService interface {
	ListProducts(ctx context.Context, page int) (*ProductPage, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	AddProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	EditProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error)
	Restock(ctx context.Context, id int64, qty int) (*domain.Product, error)
}

type catalogService struct {
	dbExecutor  repository.DBExecutor
	productRepo repository.ProductRepository
	pageSize    int
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(dbExecutor repository.DBExecutor, productRepo repository.ProductRepository, pageSize int) CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &catalogService{
		dbExecutor:  dbExecutor,
		productRepo: productRepo,
		pageSize:    pageSize,
	}
}

// ListProducts returns the zero-based page of the catalog.
func (s *catalogService) ListProducts(ctx context.Context, page int) (*ProductPage, error) {
	if page < 0 {
		return nil, util.ErrInvalidInput
	}
	products, err := s.List(ctx, s.pageSize, page*s.pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountProducts(ctx, s.dbExecutor)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductPage{Products: products, Page: page, PageSize: s.pageSize, TotalCount: total}, nil
}

func (s *catalogService) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || offset < 0 {
		return nil, util.ErrInvalidInput
	}
	products, err := s.productRepo.ListProducts(ctx, s.dbExecutor, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) AddProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	product := domain.NewProduct(in.Type, in.Name, in.Description, in.Price, in.Stock)
	if err := s.productRepo.CreateProduct(ctx, s.dbExecutor, product); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}
	return product, nil
}

func (s *catalogService) EditProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetProductByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("edit product: %w", err)
	}
	product.Type = in.Type
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Stock = in.Stock
	if err := s.productRepo.UpdateProduct(ctx, s.dbExecutor, product); err != nil {
		return nil, fmt.Errorf("edit product: %w", err)
	}
	return product, nil
}

func (s *catalogService) Restock(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: restock quantity must be positive", util.ErrInvalidInput)
	}
	product, err := s.productRepo.AddStock(ctx, s.dbExecutor, id, qty)
	if err != nil {
		return nil, fmt.Errorf("restock: %w", err)
	}
	return product, nil
}
