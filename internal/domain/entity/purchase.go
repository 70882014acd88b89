package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a stock receipt from a supplier. Each received item becomes a Lot.
type Purchase struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SupplierID   *uint           `gorm:"index" json:"supplier_id,omitempty"`
	Reference    *string         `gorm:"size:100" json:"reference,omitempty"`
	PurchaseDate time.Time       `gorm:"type:date;not null" json:"purchase_date"`
	TotalCost    decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0" json:"total_cost"`
	CreatedByID  *uuid.UUID      `gorm:"size:36;column:created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Lots     []Lot     `gorm:"foreignKey:PurchaseID" json:"lots,omitempty"`
}

// TableName returns the table name for the Purchase model
func (Purchase) TableName() string {
	return "purchases"
}
