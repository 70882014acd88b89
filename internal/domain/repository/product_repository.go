package repository

import (
	"context"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uint) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// GetBySKUs loads several products in one query, keyed by SKU.
	GetBySKUs(ctx context.Context, skus []string) (map[string]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	// AdjustQuantity moves the cached on-hand quantity by delta base units.
	AdjustQuantity(ctx context.Context, sku string, delta int64) error
	// SetQuantity overwrites the cache, used by reconciliation.
	SetQuantity(ctx context.Context, sku string, quantity int64) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Category   string
	Status     string
}
