package request

import "github.com/shopspring/decimal"

// SaleCustomerRequest names the buyer; the other fields refresh an existing
// customer record when given.
type SaleCustomerRequest struct {
	Name       string  `json:"name" binding:"required,max=255"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Email      *string `json:"email" binding:"omitempty,max=255"`
	Address    *string `json:"address"`
	VAT        *string `json:"vat" binding:"omitempty,max=50"`
	Route      *string `json:"route" binding:"omitempty,max=100"`
	SalesRepID *uint   `json:"sales_rep_id"`
}

// SaleItemRequest is one cart line. Line-level problems are reported by the
// sale engine as INVALID_LINE_ITEM, so the binding rules stay loose here.
type SaleItemRequest struct {
	SKU          string           `json:"sku"`
	Quantity     int64            `json:"quantity"`
	PackSize     string           `json:"pack_size"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	UnitDiscount *decimal.Decimal `json:"unit_discount"`
	LotID        *uint            `json:"lot_id"`
	BatchNo      string           `json:"batch_no"`
}

// CreateSaleRequest represents a sale. Omitting tax_rate uses the configured
// rate; tax_amount overrides the rate entirely.
type CreateSaleRequest struct {
	Customer     SaleCustomerRequest `json:"customer"`
	Items        []SaleItemRequest   `json:"items" binding:"required"`
	PaymentType  string              `json:"payment_type" binding:"omitempty,max=20"`
	RouteRepCode *string             `json:"route_rep_code" binding:"omitempty,max=50"`
	SalesRepID   *uint               `json:"sales_rep_id"`
	SalesRepName *string             `json:"sales_rep_name" binding:"omitempty,max=255"`
	BatchNo      *string             `json:"batch_no" binding:"omitempty,max=100"`
	TaxRate      *decimal.Decimal    `json:"tax_rate"`
	TaxAmount    *decimal.Decimal    `json:"tax_amount"`
	InvoiceDate  *string             `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
}

// SaleFilterRequest represents invoice list filters
type SaleFilterRequest struct {
	Search     string `form:"search"`
	CustomerID *uint  `form:"customer_id"`
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// PrintInvoiceRequest selects layout and placement of a printed invoice.
// Offsets are millimetres.
type PrintInvoiceRequest struct {
	Format        string  `form:"format" binding:"omitempty,oneof=a4 dot overlay thermal"`
	OffsetX       float64 `form:"offset_x"`
	OffsetY       float64 `form:"offset_y"`
	Scale         float64 `form:"scale" binding:"omitempty,gt=0,lte=3"`
	FontSize      float64 `form:"font_size" binding:"omitempty,gt=0,lte=30"`
	ShowBg        bool    `form:"show_bg"`
	BgURL         string  `form:"bg_url" binding:"omitempty,max=500"`
	FinalDiscount string  `form:"final_discount"`
	Send          bool    `form:"send"`
}

// ReportRangeRequest bounds date-ranged reports
type ReportRangeRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
