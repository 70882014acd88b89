package repository

import (
	"context"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) domainRepo.PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create stores the purchase header only; lots go through the lot ledger.
func (r *purchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(purchase).Error
}

func (r *purchaseRepository) GetWithLots(ctx context.Context, id uint) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Lots", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&purchase, id).Error
	return notFoundAsNil(&purchase, err)
}

func (r *purchaseRepository) List(ctx context.Context, params *domainRepo.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Purchase{})
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.StartDate != nil {
		query = query.Where("purchase_date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("purchase_date <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(params.Pagination)).
		Preload("Supplier").
		Order("purchase_date DESC, id DESC").
		Find(&purchases).Error
	return purchases, total, err
}
