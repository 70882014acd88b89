package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/domain/stock"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/sangkips/stockbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LotService manages ad-hoc stock batches in the lot ledger. Every change to a
// lot's remaining units moves the product quantity cache in the same
// transaction.
type LotService struct {
	lotRepo repository.LotRepository
	txScope repository.TransactionScope
}

// NewLotService creates a new lot service
func NewLotService(lotRepo repository.LotRepository, txScope repository.TransactionScope) *LotService {
	return &LotService{
		lotRepo: lotRepo,
		txScope: txScope,
	}
}

// ReceiveBatchInput represents an ad-hoc batch receipt
type ReceiveBatchInput struct {
	SKU             string
	BatchNo         string
	PackSize        string
	Packs           int64
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	UnitCost        decimal.Decimal
	UnitPrice       decimal.Decimal
}

// ReceiveBatch records a batch as a new lot and credits the product cache.
func (s *LotService) ReceiveBatch(ctx context.Context, input *ReceiveBatchInput) (*entity.Lot, error) {
	receipt := stock.BatchReceipt(input.SKU, input.Packs)
	receipt.BatchNo = input.BatchNo
	receipt.PackSize = input.PackSize
	receipt.ManufactureDate = input.ManufactureDate
	receipt.ExpiryDate = input.ExpiryDate
	receipt.UnitCost = input.UnitCost
	receipt.UnitPrice = input.UnitPrice

	lot, err := receipt.Lot()
	if err != nil {
		return nil, receiptError("", err)
	}

	err = s.txScope.Execute(ctx, func(ctx context.Context, repos repository.TransactionalRepositories) error {
		product, err := repos.Products().GetBySKU(ctx, lot.SKU)
		if err != nil {
			return err
		}
		if product == nil {
			return apperror.NewNotFoundError("Product " + lot.SKU)
		}
		if err := repos.Lots().Create(ctx, lot); err != nil {
			return err
		}
		return repos.Products().AdjustQuantity(ctx, lot.SKU, lot.Received)
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("lot received",
		zap.Uint("lot_id", lot.ID),
		zap.String("sku", lot.SKU),
		zap.Int64("units", lot.Received),
	)
	return lot, nil
}

// GetLot retrieves a lot by ID
func (s *LotService) GetLot(ctx context.Context, id uint) (*entity.Lot, error) {
	lot, err := s.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, apperror.NewNotFoundError("Lot")
	}
	return lot, nil
}

// ListLots lists lots with filtering
func (s *LotService) ListLots(ctx context.Context, params *repository.LotFilterParams) (*pagination.PaginatedResult[entity.Lot], error) {
	lots, total, err := s.lotRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(lots, pag), nil
}

// ListBySKU returns a SKU's lots in allocation order; all includes empty and
// retired lots.
func (s *LotService) ListBySKU(ctx context.Context, sku string, all bool) ([]entity.Lot, error) {
	if all {
		return s.lotRepo.ListAllBySKU(ctx, sku)
	}
	return s.lotRepo.ListAvailableBySKU(ctx, sku)
}

// UpdateLotInput carries lot metadata. Quantities change only through
// AdjustLot and sales.
type UpdateLotInput struct {
	BatchNo         *string
	PackSize        *string
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	UnitCost        *decimal.Decimal
	UnitPrice       *decimal.Decimal
}

// UpdateLot updates a lot's metadata
func (s *LotService) UpdateLot(ctx context.Context, id uint, input *UpdateLotInput) (*entity.Lot, error) {
	lot, err := s.GetLot(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.BatchNo != nil {
		lot.BatchNo = strings.TrimSpace(*input.BatchNo)
	}
	if input.PackSize != nil {
		if _, err := stock.ParsePackSize(*input.PackSize); err != nil {
			return nil, receiptError("", err)
		}
		lot.PackSize = *input.PackSize
	}
	if input.ManufactureDate != nil {
		lot.ManufactureDate = input.ManufactureDate
	}
	if input.ExpiryDate != nil {
		lot.ExpiryDate = input.ExpiryDate
	}
	if input.UnitCost != nil {
		lot.UnitCost = *input.UnitCost
	}
	if input.UnitPrice != nil {
		lot.UnitPrice = *input.UnitPrice
	}
	if lot.ManufactureDate != nil && lot.ExpiryDate != nil && lot.ExpiryDate.Before(*lot.ManufactureDate) {
		return nil, receiptError("", stock.ErrExpiryBeforeMade)
	}
	if lot.UnitCost.IsNegative() || lot.UnitPrice.IsNegative() {
		return nil, receiptError("", stock.ErrNegativeCost)
	}

	if err := s.lotRepo.UpdateDetails(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// AdjustLot applies a stock correction in base units: positive credits the
// lot, negative debits it under the same guard as a sale.
func (s *LotService) AdjustLot(ctx context.Context, id uint, delta int64) (*entity.Lot, error) {
	if delta == 0 {
		return nil, apperror.NewBadRequestError("Adjustment must not be zero")
	}

	var lot *entity.Lot
	err := s.txScope.Execute(ctx, func(ctx context.Context, repos repository.TransactionalRepositories) error {
		current, err := repos.Lots().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NewNotFoundError("Lot")
		}
		if current.Status != enum.LotStatusActive {
			return apperror.NewConflictError("Lot is retired")
		}

		if delta > 0 {
			err = repos.Lots().Credit(ctx, id, delta)
		} else {
			err = repos.Lots().Debit(ctx, id, -delta)
		}
		if err != nil {
			return err
		}
		if err := repos.Products().AdjustQuantity(ctx, current.SKU, delta); err != nil {
			return err
		}
		lot, err = repos.Lots().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("lot adjusted", zap.Uint("lot_id", id), zap.Int64("delta", delta))
	return lot, nil
}

// RemoveLot deletes a lot nothing was ever sold from. A lot that invoices
// drew on is retired instead so their history stays intact. The returned
// flag tells which happened.
func (s *LotService) RemoveLot(ctx context.Context, id uint) (deleted bool, err error) {
	err = s.txScope.Execute(ctx, func(ctx context.Context, repos repository.TransactionalRepositories) error {
		lot, err := repos.Lots().LockByID(ctx, id)
		if err != nil {
			return err
		}
		if lot == nil {
			return apperror.NewNotFoundError("Lot")
		}

		withdrawn := lot.Available()
		if lot.SoldAgainst {
			if lot.Status == enum.LotStatusRetired {
				return nil
			}
			err = repos.Lots().SetStatus(ctx, id, enum.LotStatusRetired)
		} else {
			err = repos.Lots().Delete(ctx, id)
			deleted = err == nil
		}
		if err != nil {
			return err
		}
		if withdrawn == 0 {
			return nil
		}
		return repos.Products().AdjustQuantity(ctx, lot.SKU, -withdrawn)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// receiptError turns a stock validation failure into a 400.
func receiptError(prefix string, err error) error {
	switch {
	case errors.Is(err, stock.ErrMissingSKU),
		errors.Is(err, stock.ErrExpiryBeforeMade),
		errors.Is(err, stock.ErrNegativeCost),
		errors.Is(err, stock.ErrInvalidPackSize),
		errors.Is(err, stock.ErrPackSizeOverflow),
		errors.Is(err, stock.ErrQuantityOverflow),
		errors.Is(err, stock.ErrNegativeQuantity):
		return apperror.NewBadRequestError(prefix + err.Error())
	}
	if prefix != "" {
		return fmt.Errorf("%s%w", prefix, err)
	}
	return err
}
