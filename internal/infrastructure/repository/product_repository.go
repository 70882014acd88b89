package repository

import (
	"context"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*entity.Product, error) {
	var product entity.Product
	return notFoundAsNil(&product, r.db.WithContext(ctx).First(&product, id).Error)
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var product entity.Product
	return notFoundAsNil(&product, r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error)
}

// GetBySKUs retrieves multiple products in a single query
func (r *productRepository) GetBySKUs(ctx context.Context, skus []string) (map[string]entity.Product, error) {
	out := make(map[string]entity.Product, len(skus))
	if len(skus) == 0 {
		return out, nil
	}
	var products []entity.Product
	if err := r.db.WithContext(ctx).Where("sku IN ?", skus).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.SKU] = p
	}
	return out, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Model(product).
		Select("name", "generic_name", "brand_name", "strength", "category", "cost", "price", "discount", "status").
		Updates(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Product{}, id).Error
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	var products []entity.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Product{}).
		Scopes(Search(params.Search, "sku", "name", "generic_name", "brand_name"))
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(params.Pagination)).Order("name ASC").Find(&products).Error
	return products, total, err
}

func (r *productRepository) AdjustQuantity(ctx context.Context, sku string, delta int64) error {
	if delta == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("sku = ?", sku).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Product " + sku)
	}
	return nil
}

func (r *productRepository) SetQuantity(ctx context.Context, sku string, quantity int64) error {
	return r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("sku = ?", sku).
		Update("quantity", quantity).Error
}
