package repository

import (
	"context"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/pkg/pagination"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*entity.Customer, error) {
	var customer entity.Customer
	return notFoundAsNil(&customer, r.db.WithContext(ctx).First(&customer, id).Error)
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete soft-deletes the customer and frees its walk-in key for reuse.
func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Customer{}).Where("id = ?", id).Update("walk_in_key", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Customer{}, id).Error
	})
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string, directoryOnly bool) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Scopes(Search(search, "name", "phone", "email", "vat"))
	if directoryOnly {
		query = query.Where("is_directory = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(params)).Order("name ASC").Find(&customers).Error
	return customers, total, err
}

func (r *customerRepository) FindDirectoryByName(ctx context.Context, name string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_directory = ?", name, true).
		Order("id ASC").
		First(&customer).Error
	return notFoundAsNil(&customer, err)
}

func (r *customerRepository) FindWalkIn(ctx context.Context, key string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).Where("walk_in_key = ?", key).First(&customer).Error
	return notFoundAsNil(&customer, err)
}

type supplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *gorm.DB) domainRepo.SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepository) GetByID(ctx context.Context, id uint) (*entity.Supplier, error) {
	var supplier entity.Supplier
	return notFoundAsNil(&supplier, r.db.WithContext(ctx).First(&supplier, id).Error)
}

func (r *supplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Supplier{}, id).Error
}

func (r *supplierRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Supplier, int64, error) {
	var suppliers []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{}).
		Scopes(Search(search, "name", "contact_person", "phone", "email"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Scopes(Paginate(params)).Order("name ASC").Find(&suppliers).Error
	return suppliers, total, err
}
