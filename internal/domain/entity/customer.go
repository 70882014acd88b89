package entity

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Customer is either a directory entry managed by staff or a walk-in created at
// sale time. Walk-ins carry WalkInKey so a name maps to at most one walk-in row.
type Customer struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	Email       *string        `gorm:"size:255" json:"email,omitempty"`
	Address     *string        `gorm:"type:text" json:"address,omitempty"`
	VAT         *string        `gorm:"size:50;column:vat" json:"vat,omitempty"`
	Route       *string        `gorm:"size:100" json:"route,omitempty"`
	SalesRepID  *uint          `json:"sales_rep_id,omitempty"`
	IsDirectory bool           `gorm:"not null;default:false;index" json:"is_directory"`
	WalkInKey   *string        `gorm:"size:255;uniqueIndex" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// Code is the printed customer code, e.g. CUST-0007.
func (c *Customer) Code() string {
	return fmt.Sprintf("CUST-%04d", c.ID)
}

// WalkInKeyFor normalises a sale's customer name into the walk-in dedup key.
func WalkInKeyFor(name string) string {
	return strings.TrimSpace(name)
}
