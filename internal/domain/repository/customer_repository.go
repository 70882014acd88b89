package repository

import (
	"context"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uint) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uint) error
	// List returns customers; directoryOnly hides walk-ins.
	List(ctx context.Context, params *pagination.PaginationParams, search string, directoryOnly bool) ([]entity.Customer, int64, error)
	// FindDirectoryByName is an exact-name lookup among directory customers.
	FindDirectoryByName(ctx context.Context, name string) (*entity.Customer, error)
	FindWalkIn(ctx context.Context, key string) (*entity.Customer, error)
}

// SupplierRepository defines the interface for supplier data operations
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id uint) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error)
}
