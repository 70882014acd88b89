package repository

import (
	"context"
	"strings"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the header and its lines. The customer row is never written here.
func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Omit("Customer").Create(invoice).Error
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&invoice, "invoice_no = ?", invoiceNo).Error
	return notFoundAsNil(&invoice, err)
}

// NumbersLike uses a locking read so repeatable-read engines see numbers
// committed after the transaction began.
func (r *invoiceRepository) NumbersLike(ctx context.Context, patterns []string) ([]string, error) {
	var numbers []string
	if len(patterns) == 0 {
		return numbers, nil
	}
	conds := make([]string, len(patterns))
	args := make([]interface{}, len(patterns))
	for i, p := range patterns {
		conds[i] = "invoice_no LIKE ? ESCAPE '!'"
		args[i] = p
	}
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where(strings.Join(conds, " OR "), args...).
		Scopes(ForUpdate).
		Pluck("invoice_no", &numbers).Error
	return numbers, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(Search(params.Search, "invoice_no", "customer_name"))
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.StartDate != nil {
		query = query.Where("invoice_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("invoice_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(params.Pagination)).Order("id DESC").Find(&invoices).Error
	return invoices, total, err
}
