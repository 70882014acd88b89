package repository

import (
	"context"

	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"gorm.io/gorm"
)

// GormTransactionScope runs a unit of work in one gorm transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos domainRepo.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Lots() domainRepo.LotRepository {
	return NewLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) Products() domainRepo.ProductRepository {
	return NewProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Customers() domainRepo.CustomerRepository {
	return NewCustomerRepository(r.tx)
}

func (r *gormTransactionalRepositories) Invoices() domainRepo.InvoiceRepository {
	return NewInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Purchases() domainRepo.PurchaseRepository {
	return NewPurchaseRepository(r.tx)
}

func (r *gormTransactionalRepositories) SavePoint(name string) error {
	return r.tx.SavePoint(name).Error
}

func (r *gormTransactionalRepositories) RollbackTo(name string) error {
	return r.tx.RollbackTo(name).Error
}

var _ domainRepo.TransactionScope = (*GormTransactionScope)(nil)

var _ domainRepo.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
