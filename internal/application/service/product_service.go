package service

import (
	"context"
	"strings"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/sangkips/stockbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, lotRepo repository.LotRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		lotRepo:     lotRepo,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	SKU         string
	Name        string
	GenericName *string
	BrandName   *string
	Strength    *string
	Category    *string
	Cost        decimal.Decimal
	Price       decimal.Decimal
	Discount    decimal.Decimal
}

// CreateProduct creates a catalog entry. Stock arrives later through lots.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, apperror.NewBadRequestError("SKU is required")
	}
	if err := checkPricing(input.Cost, input.Price, input.Discount); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Product SKU already exists")
	}

	product := &entity.Product{
		SKU:         sku,
		Name:        strings.TrimSpace(input.Name),
		GenericName: input.GenericName,
		BrandName:   input.BrandName,
		Strength:    input.Strength,
		Category:    input.Category,
		Cost:        input.Cost,
		Price:       input.Price,
		Discount:    input.Discount,
		Status:      entity.ProductStatusActive,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProductInput represents the update product input. The SKU and the
// quantity are not editable here: quantity follows the lots.
type UpdateProductInput struct {
	Name        *string
	GenericName *string
	BrandName   *string
	Strength    *string
	Category    *string
	Cost        *decimal.Decimal
	Price       *decimal.Decimal
	Discount    *decimal.Decimal
	Status      *string
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.GenericName != nil {
		product.GenericName = input.GenericName
	}
	if input.BrandName != nil {
		product.BrandName = input.BrandName
	}
	if input.Strength != nil {
		product.Strength = input.Strength
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Cost != nil {
		product.Cost = *input.Cost
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Discount != nil {
		product.Discount = *input.Discount
	}
	if input.Status != nil {
		switch *input.Status {
		case entity.ProductStatusActive, entity.ProductStatusInactive:
			product.Status = *input.Status
		default:
			return nil, apperror.NewBadRequestError("Unknown product status " + *input.Status)
		}
	}
	if err := checkPricing(product.Cost, product.Price, product.Discount); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product that has no stock left in any lot.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	lots, err := s.lotRepo.ListAvailableBySKU(ctx, product.SKU)
	if err != nil {
		return err
	}
	if len(lots) > 0 {
		return apperror.NewConflictError("Product still has stock in active lots")
	}
	return s.productRepo.Delete(ctx, id)
}

func checkPricing(cost, price, discount decimal.Decimal) error {
	if cost.IsNegative() || price.IsNegative() || discount.IsNegative() {
		return apperror.NewBadRequestError("Prices must not be negative")
	}
	if discount.GreaterThan(price) {
		return apperror.NewBadRequestError("Discount exceeds the selling price")
	}
	return nil
}
