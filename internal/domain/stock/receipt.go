package stock

import (
	"errors"
	"strings"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingSKU           = errors.New("sku is required")
	ErrExpiryBeforeMade     = errors.New("expiry date is before manufacture date")
	ErrNegativeCost         = errors.New("unit cost and price must not be negative")
	ErrPurchaseLotNeedsHead = errors.New("purchase lot requires a purchase id")
)

// LotReceipt is stock arriving into the ledger. The two variants differ only
// in provenance: BatchReceipt for ad-hoc batches, PurchaseReceipt for items of
// a supplier purchase.
type LotReceipt struct {
	SKU             string
	BatchNo         string
	PackSize        string
	Packs           int64
	ManufactureDate *time.Time
	ExpiryDate      *time.Time
	UnitCost        decimal.Decimal
	UnitPrice       decimal.Decimal

	source     enum.LotSource
	purchaseID *uint
}

func BatchReceipt(sku string, packs int64) LotReceipt {
	return LotReceipt{SKU: sku, Packs: packs, source: enum.LotSourceBatch}
}

func PurchaseReceipt(purchaseID uint, sku string, packs int64) LotReceipt {
	return LotReceipt{SKU: sku, Packs: packs, source: enum.LotSourcePurchase, purchaseID: &purchaseID}
}

// Source reports which variant built the receipt.
func (r LotReceipt) Source() enum.LotSource {
	return r.source
}

// Lot validates the receipt and returns the ledger row to insert, with the
// pack count expanded to base units.
func (r LotReceipt) Lot() (*entity.Lot, error) {
	sku := strings.TrimSpace(r.SKU)
	if sku == "" {
		return nil, ErrMissingSKU
	}
	if r.source == enum.LotSourcePurchase && r.purchaseID == nil {
		return nil, ErrPurchaseLotNeedsHead
	}
	if r.UnitCost.IsNegative() || r.UnitPrice.IsNegative() {
		return nil, ErrNegativeCost
	}
	if r.ManufactureDate != nil && r.ExpiryDate != nil && r.ExpiryDate.Before(*r.ManufactureDate) {
		return nil, ErrExpiryBeforeMade
	}
	units, err := BaseUnits(r.Packs, r.PackSize)
	if err != nil {
		return nil, err
	}

	source := r.source
	if source == "" {
		source = enum.LotSourceBatch
	}
	return &entity.Lot{
		SKU:             sku,
		Source:          source,
		PurchaseID:      r.purchaseID,
		BatchNo:         strings.TrimSpace(r.BatchNo),
		ManufactureDate: r.ManufactureDate,
		ExpiryDate:      r.ExpiryDate,
		PackSize:        r.PackSize,
		UnitCost:        r.UnitCost,
		UnitPrice:       r.UnitPrice,
		Received:        units,
		Remaining:       units,
		Status:          enum.LotStatusActive,
	}, nil
}
