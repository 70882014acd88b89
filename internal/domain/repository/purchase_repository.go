package repository

import (
	"context"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

// PurchaseRepository defines the interface for purchase data operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	// GetWithLots loads the purchase with its supplier and received lots.
	GetWithLots(ctx context.Context, id uint) (*entity.Purchase, error)
	List(ctx context.Context, params *PurchaseFilterParams) ([]entity.Purchase, int64, error)
}

// PurchaseFilterParams contains filtering parameters for purchase queries
type PurchaseFilterParams struct {
	Pagination *pagination.PaginationParams
	SupplierID *uint
	StartDate  *time.Time
	EndDate    *time.Time
}
