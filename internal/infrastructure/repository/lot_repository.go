package repository

import (
	"context"
	"fmt"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"gorm.io/gorm"
)

type lotRepository struct {
	db *gorm.DB
}

// NewLotRepository creates a new lot ledger repository
func NewLotRepository(db *gorm.DB) domainRepo.LotRepository {
	return &lotRepository{db: db}
}

func (r *lotRepository) Create(ctx context.Context, lot *entity.Lot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *lotRepository) GetByID(ctx context.Context, id uint) (*entity.Lot, error) {
	var lot entity.Lot
	return notFoundAsNil(&lot, r.db.WithContext(ctx).First(&lot, id).Error)
}

func (r *lotRepository) LockByID(ctx context.Context, id uint) (*entity.Lot, error) {
	var lot entity.Lot
	return notFoundAsNil(&lot, r.db.WithContext(ctx).Scopes(ForUpdate).First(&lot, id).Error)
}

func (r *lotRepository) available(ctx context.Context, sku string) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("sku = ? AND remaining > 0 AND status = ?", sku, enum.LotStatusActive).
		Scopes(FIFOOrder)
}

func (r *lotRepository) ListAvailableBySKU(ctx context.Context, sku string) ([]entity.Lot, error) {
	var lots []entity.Lot
	err := r.available(ctx, sku).Find(&lots).Error
	return lots, err
}

func (r *lotRepository) LockAvailableBySKU(ctx context.Context, sku string) ([]entity.Lot, error) {
	var lots []entity.Lot
	err := r.available(ctx, sku).Scopes(ForUpdate).Find(&lots).Error
	return lots, err
}

func (r *lotRepository) ListAllBySKU(ctx context.Context, sku string) ([]entity.Lot, error) {
	var lots []entity.Lot
	err := r.db.WithContext(ctx).Where("sku = ?", sku).Scopes(FIFOOrder).Find(&lots).Error
	return lots, err
}

func (r *lotRepository) List(ctx context.Context, params *domainRepo.LotFilterParams) ([]entity.Lot, int64, error) {
	var lots []entity.Lot
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Lot{})
	if params.SKU != "" {
		query = query.Where("sku = ?", params.SKU)
	}
	if params.Source != "" {
		query = query.Where("source = ?", params.Source)
	}
	if !params.IncludeEmpty {
		query = query.Where("remaining > 0 AND status = ?", enum.LotStatusActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(FIFOOrder, Paginate(params.Pagination)).Find(&lots).Error
	return lots, total, err
}

func (r *lotRepository) Debit(ctx context.Context, lotID uint, units int64) error {
	return r.debit(ctx, r.db.WithContext(ctx).Where("id = ?", lotID), lotID, "", units)
}

func (r *lotRepository) DebitSpecific(ctx context.Context, sku string, lotID uint, units int64) error {
	return r.debit(ctx, r.db.WithContext(ctx).Where("id = ? AND sku = ?", lotID, sku), lotID, sku, units)
}

// debit is a guarded decrement: the WHERE clause re-checks sufficiency so a
// concurrent debit that got there first makes this one affect zero rows.
func (r *lotRepository) debit(ctx context.Context, scope *gorm.DB, lotID uint, sku string, units int64) error {
	if units < 0 {
		return fmt.Errorf("debit lot %d: negative units %d", lotID, units)
	}
	if units == 0 {
		return nil
	}
	result := scope.Model(&entity.Lot{}).
		Where("remaining >= ? AND status = ?", units, enum.LotStatusActive).
		Updates(map[string]interface{}{
			"remaining":    gorm.Expr("remaining - ?", units),
			"sold_against": true,
		})
	if result.Error != nil {
		return fmt.Errorf("debit lot %d: %w", lotID, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	lot, err := r.GetByID(ctx, lotID)
	if err != nil {
		return fmt.Errorf("debit lot %d: %w", lotID, err)
	}
	if lot == nil || (sku != "" && lot.SKU != sku) {
		return apperror.NewInsufficientStockError(sku, units, 0)
	}
	return apperror.NewInsufficientStockError(lot.SKU, units, lot.Available())
}

func (r *lotRepository) Credit(ctx context.Context, lotID uint, units int64) error {
	if units < 0 {
		return fmt.Errorf("credit lot %d: negative units %d", lotID, units)
	}
	result := r.db.WithContext(ctx).Model(&entity.Lot{}).
		Where("id = ?", lotID).
		Updates(map[string]interface{}{
			"remaining": gorm.Expr("remaining + ?", units),
			"received":  gorm.Expr("received + ?", units),
		})
	if result.Error != nil {
		return fmt.Errorf("credit lot %d: %w", lotID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Lot")
	}
	return nil
}

// UpdateDetails saves descriptive fields only; quantities move through Debit and Credit.
func (r *lotRepository) UpdateDetails(ctx context.Context, lot *entity.Lot) error {
	return r.db.WithContext(ctx).Model(lot).
		Select("batch_no", "manufacture_date", "expiry_date", "pack_size", "unit_cost", "unit_price").
		Updates(lot).Error
}

func (r *lotRepository) SetStatus(ctx context.Context, lotID uint, status enum.LotStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Lot{}).
		Where("id = ?", lotID).
		Update("status", status).Error
}

// Delete removes a lot that was never sold against.
func (r *lotRepository) Delete(ctx context.Context, lotID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND sold_against = ?", lotID, false).Delete(&entity.Lot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewConflictError("Lot has been sold against and can only be retired")
	}
	return nil
}

func (r *lotRepository) RemainingBySKU(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		SKU   string
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Lot{}).
		Select("sku, COALESCE(SUM(remaining), 0) AS total").
		Where("status = ?", enum.LotStatusActive).
		Group("sku").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.SKU] = row.Total
	}
	return out, nil
}
