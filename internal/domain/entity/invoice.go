package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInvoiceImmutable is returned by the ORM hooks when committed invoice data is modified.
var ErrInvoiceImmutable = errors.New("committed invoices cannot be modified")

// Invoice is a committed sale. Header snapshots customer details as they were at sale time.
type Invoice struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	InvoiceNo       string           `gorm:"size:50;uniqueIndex;not null" json:"invoice_no"`
	FiscalCode      string           `gorm:"size:10;not null;index" json:"fiscal_code"`
	Sequence        int              `gorm:"not null" json:"sequence"`
	InvoiceDate     time.Time        `gorm:"type:date;not null;index" json:"invoice_date"`
	CustomerID      uint             `gorm:"not null;index" json:"customer_id"`
	CustomerName    string           `gorm:"size:255;not null" json:"customer_name"`
	CustomerAddress *string          `gorm:"type:text" json:"customer_address,omitempty"`
	CustomerVAT     *string          `gorm:"size:50" json:"customer_vat,omitempty"`
	PaymentType     enum.PaymentType `gorm:"size:20" json:"payment_type"`
	RouteRepCode    *string          `gorm:"size:50" json:"route_rep_code,omitempty"`
	SalesRepID      *uint            `json:"sales_rep_id,omitempty"`
	SalesRepName    *string          `gorm:"size:255" json:"sales_rep_name,omitempty"`
	BatchRef        *string          `gorm:"size:100" json:"batch_ref,omitempty"`
	SubTotal        decimal.Decimal  `gorm:"type:numeric(20,6);not null" json:"sub_total"`
	DiscountTotal   decimal.Decimal  `gorm:"type:numeric(20,6);not null" json:"discount_total"`
	TaxRate         decimal.Decimal  `gorm:"type:numeric(10,6);not null" json:"tax_rate"`
	TaxAmount       decimal.Decimal  `gorm:"type:numeric(20,6);not null" json:"tax_amount"`
	GrandTotal      decimal.Decimal  `gorm:"type:numeric(20,6);not null" json:"grand_total"`
	CreatedByID     *uuid.UUID       `gorm:"size:36;column:created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`

	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Lines    []InvoiceLine `gorm:"foreignKey:InvoiceID" json:"lines,omitempty"`
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) BeforeUpdate(*gorm.DB) error {
	return ErrInvoiceImmutable
}

func (i *Invoice) BeforeDelete(*gorm.DB) error {
	return ErrInvoiceImmutable
}

// InvoiceLine records one requested cart line. Quantity is in packs; a line
// that drew on several lots is still a single row.
type InvoiceLine struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InvoiceID    uint            `gorm:"not null;index" json:"invoice_id"`
	Position     int             `gorm:"not null" json:"position"`
	SKU          string          `gorm:"size:100;not null;index" json:"sku"`
	ProductName  string          `gorm:"size:255;not null" json:"product_name"`
	PackSize     string          `gorm:"size:50" json:"pack_size"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	BaseUnits    int64           `gorm:"not null" json:"base_units"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"unit_price"`
	UnitDiscount decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"unit_discount"`
	LineTotal    decimal.Decimal `gorm:"type:numeric(20,6);not null" json:"line_total"`
	PinnedLotID  *uint           `json:"pinned_lot_id,omitempty"`
	BatchRef     string          `gorm:"size:100" json:"batch_ref,omitempty"`
}

// TableName returns the table name for the InvoiceLine model
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

func (l *InvoiceLine) BeforeUpdate(*gorm.DB) error {
	return ErrInvoiceImmutable
}

func (l *InvoiceLine) BeforeDelete(*gorm.DB) error {
	return ErrInvoiceImmutable
}
