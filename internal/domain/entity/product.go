package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a catalog entry. Quantity is a cache of the remaining base units
// across the SKU's lots; the lots are authoritative.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SKU         string          `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	GenericName *string         `gorm:"size:255" json:"generic_name,omitempty"`
	BrandName   *string         `gorm:"size:255" json:"brand_name,omitempty"`
	Strength    *string         `gorm:"size:100" json:"strength,omitempty"`
	Category    *string         `gorm:"size:100;index" json:"category,omitempty"`
	Cost        decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"cost"`
	Price       decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"price"`
	Discount    decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"discount"`
	Quantity    int64           `gorm:"not null;default:0" json:"quantity"`
	Status      string          `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// StockValue is quantity on hand valued at cost.
func (p *Product) StockValue() decimal.Decimal {
	return p.Cost.Mul(decimal.NewFromInt(p.Quantity))
}
