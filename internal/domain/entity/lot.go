package entity

import (
	"strconv"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Lot is one received batch of a SKU. Remaining is counted in base units.
type Lot struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	SKU             string          `gorm:"size:100;not null;index:idx_lots_sku_expiry,priority:1" json:"sku"`
	Source          enum.LotSource  `gorm:"size:20;not null;default:'batch'" json:"source"`
	PurchaseID      *uint           `gorm:"index" json:"purchase_id,omitempty"`
	BatchNo         string          `gorm:"size:100" json:"batch_no"`
	ManufactureDate *time.Time      `gorm:"type:date" json:"manufacture_date,omitempty"`
	ExpiryDate      *time.Time      `gorm:"type:date;index:idx_lots_sku_expiry,priority:2" json:"expiry_date,omitempty"`
	PackSize        string          `gorm:"size:50" json:"pack_size"`
	UnitCost        decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"unit_cost"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"unit_price"`
	Received        int64           `gorm:"not null;default:0" json:"received"`
	Remaining       int64           `gorm:"not null;default:0;check:chk_lots_remaining,remaining >= 0" json:"remaining"`
	Status          enum.LotStatus  `gorm:"not null;default:0" json:"status"`
	SoldAgainst     bool            `gorm:"not null;default:false" json:"sold_against"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName returns the table name for the Lot model
func (Lot) TableName() string {
	return "lots"
}

// Reference is the printable pin token for this lot, e.g. "PI#42".
func (l *Lot) Reference() string {
	return LotReferencePrefix + strconv.FormatUint(uint64(l.ID), 10)
}

// Available is what an allocation may take from this lot.
func (l *Lot) Available() int64 {
	if l.Status != enum.LotStatusActive || l.Remaining < 0 {
		return 0
	}
	return l.Remaining
}

// LotReferencePrefix marks a pinned-lot token in a sale line's batch field.
const LotReferencePrefix = "PI#"
