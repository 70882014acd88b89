package repository

import (
	"context"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/sangkips/stockbook-api/pkg/pagination"
)

// LotRepository is the lot ledger. Available lists are ordered for FIFO
// allocation: expiry ascending with undated lots last, then id.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id uint) (*entity.Lot, error)
	// LockByID reads a lot with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id uint) (*entity.Lot, error)
	// ListAvailableBySKU returns active lots with stock left, in FIFO order.
	ListAvailableBySKU(ctx context.Context, sku string) ([]entity.Lot, error)
	// LockAvailableBySKU is ListAvailableBySKU with row locks.
	LockAvailableBySKU(ctx context.Context, sku string) ([]entity.Lot, error)
	// ListAllBySKU includes empty and retired lots, for audit views.
	ListAllBySKU(ctx context.Context, sku string) ([]entity.Lot, error)
	List(ctx context.Context, params *LotFilterParams) ([]entity.Lot, int64, error)
	// Debit subtracts units if and only if the lot still holds them.
	// A shortfall returns an INSUFFICIENT_STOCK error and changes nothing.
	Debit(ctx context.Context, lotID uint, units int64) error
	// DebitSpecific is Debit for a caller-pinned lot; the lot must belong to sku.
	DebitSpecific(ctx context.Context, sku string, lotID uint, units int64) error
	Credit(ctx context.Context, lotID uint, units int64) error
	UpdateDetails(ctx context.Context, lot *entity.Lot) error
	SetStatus(ctx context.Context, lotID uint, status enum.LotStatus) error
	Delete(ctx context.Context, lotID uint) error
	// RemainingBySKU sums active remaining units per SKU.
	RemainingBySKU(ctx context.Context) (map[string]int64, error)
}

// LotFilterParams contains filtering parameters for lot queries
type LotFilterParams struct {
	Pagination   *pagination.PaginationParams
	SKU          string
	Source       enum.LotSource
	IncludeEmpty bool
}
