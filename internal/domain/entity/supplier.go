package entity

import (
	"time"

	"gorm.io/gorm"
)

// Supplier represents a stock supplier
type Supplier struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	ContactPerson *string        `gorm:"size:255" json:"contact_person,omitempty"`
	Phone         *string        `gorm:"size:50" json:"phone,omitempty"`
	Email         *string        `gorm:"size:255" json:"email,omitempty"`
	Address       *string        `gorm:"type:text" json:"address,omitempty"`
	VAT           *string        `gorm:"size:50;column:vat" json:"vat,omitempty"`
	Notes         *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}
