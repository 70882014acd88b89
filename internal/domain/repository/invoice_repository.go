package repository

import (
	"context"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

// InvoiceRepository stores committed invoices. There is no update or delete.
type InvoiceRepository interface {
	// Create inserts the invoice with its lines. A taken invoice number
	// surfaces as gorm.ErrDuplicatedKey.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByNumber(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	// NumbersLike returns invoice numbers matching any of the LIKE patterns.
	// Patterns escape literal wildcards with '!'.
	NumbersLike(ctx context.Context, patterns []string) ([]string, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CustomerID *uint
	StartDate  *time.Time
	EndDate    *time.Time
}
