package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/domain/stock"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/sangkips/stockbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseService records supplier purchases. Each purchased item becomes a
// purchase-derived lot.
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	txScope      repository.TransactionScope
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	txScope repository.TransactionScope,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		txScope:      txScope,
	}
}

// PurchaseItemInput represents an item in a purchase. UnitCost and
// UnitPrice are per pack.
type PurchaseItemInput struct {
	SKU             string
	BatchNo         string
	PackSize        string
	Packs           int64
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	UnitCost        decimal.Decimal
	UnitPrice       decimal.Decimal
}

// CreatePurchaseInput represents the create purchase input
type CreatePurchaseInput struct {
	UserID       *uuid.UUID
	SupplierID   *uint
	Reference    *string
	PurchaseDate *time.Time
	Items        []PurchaseItemInput
}

// CreatePurchase stores the purchase header, one lot per item, and credits
// the product cache, all in one transaction.
func (s *PurchaseService) CreatePurchase(ctx context.Context, input *CreatePurchaseInput) (*entity.Purchase, error) {
	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("A purchase needs at least one item")
	}
	if input.SupplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, *input.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apperror.NewNotFoundError("Supplier")
		}
	}

	total := decimal.Zero
	skus := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(item.Packs)))
		skus = append(skus, strings.TrimSpace(item.SKU))
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.PurchaseDate != nil {
		date = *input.PurchaseDate
	}
	purchase := &entity.Purchase{
		SupplierID:   input.SupplierID,
		Reference:    input.Reference,
		PurchaseDate: date,
		TotalCost:    total,
		CreatedByID:  input.UserID,
	}

	err := s.txScope.Execute(ctx, func(ctx context.Context, repos repository.TransactionalRepositories) error {
		products, err := repos.Products().GetBySKUs(ctx, skus)
		if err != nil {
			return err
		}
		for i, sku := range skus {
			if _, ok := products[sku]; !ok {
				return apperror.NewBadRequestError(fmt.Sprintf("Item %d: unknown product %q", i+1, sku))
			}
		}

		if err := repos.Purchases().Create(ctx, purchase); err != nil {
			return err
		}

		credits := make(map[string]int64)
		for i, item := range input.Items {
			receipt := stock.PurchaseReceipt(purchase.ID, item.SKU, item.Packs)
			receipt.BatchNo = item.BatchNo
			receipt.PackSize = item.PackSize
			receipt.ManufactureDate = item.ManufactureDate
			receipt.ExpiryDate = item.ExpiryDate
			receipt.UnitCost = item.UnitCost
			receipt.UnitPrice = item.UnitPrice

			lot, err := receipt.Lot()
			if err != nil {
				return receiptError(fmt.Sprintf("Item %d: ", i+1), err)
			}
			if err := repos.Lots().Create(ctx, lot); err != nil {
				return err
			}
			credits[lot.SKU] += lot.Received
		}

		ordered := make([]string, 0, len(credits))
		for sku := range credits {
			ordered = append(ordered, sku)
		}
		sort.Strings(ordered)
		for _, sku := range ordered {
			if err := repos.Products().AdjustQuantity(ctx, sku, credits[sku]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("purchase received",
		zap.Uint("purchase_id", purchase.ID),
		zap.Int("items", len(input.Items)),
		zap.String("total_cost", total.String()),
	)
	return s.GetPurchase(ctx, purchase.ID)
}

// GetPurchase retrieves a purchase with its lots
func (s *PurchaseService) GetPurchase(ctx context.Context, id uint) (*entity.Purchase, error) {
	purchase, err := s.purchaseRepo.GetWithLots(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	return purchase, nil
}

// ListPurchases lists purchases with filtering
func (s *PurchaseService) ListPurchases(ctx context.Context, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(purchases, pag), nil
}
