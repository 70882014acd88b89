package request

import "github.com/shopspring/decimal"

// ReceiveBatchRequest records an ad-hoc stock batch. Dates are YYYY-MM-DD.
type ReceiveBatchRequest struct {
	SKU             string          `json:"sku" binding:"required,sku"`
	BatchNo         string          `json:"batch_no" binding:"max=100"`
	PackSize        string          `json:"pack_size" binding:"max=50,packsize"`
	Packs           int64           `json:"packs" binding:"gte=1"`
	ManufactureDate *string         `json:"manufacture_date" binding:"omitempty,datetime=2006-01-02"`
	ExpiryDate      *string         `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// UpdateLotRequest edits lot metadata only
type UpdateLotRequest struct {
	BatchNo         *string          `json:"batch_no" binding:"omitempty,max=100"`
	PackSize        *string          `json:"pack_size" binding:"omitempty,max=50,packsize"`
	ManufactureDate *string          `json:"manufacture_date" binding:"omitempty,datetime=2006-01-02"`
	ExpiryDate      *string          `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
}

// AdjustLotRequest corrects a lot by a signed number of base units
type AdjustLotRequest struct {
	Units  int64  `json:"units" binding:"required"`
	Reason string `json:"reason" binding:"max=255"`
}

// LotFilterRequest represents lot filter parameters
type LotFilterRequest struct {
	SKU     string `form:"sku"`
	Source  string `form:"source" binding:"omitempty,oneof=batch purchase"`
	All     bool   `form:"all"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// PurchaseItemRequest is one received item; it becomes one lot
type PurchaseItemRequest struct {
	SKU             string          `json:"sku" binding:"required,sku"`
	BatchNo         string          `json:"batch_no" binding:"max=100"`
	PackSize        string          `json:"pack_size" binding:"max=50,packsize"`
	Packs           int64           `json:"packs" binding:"gte=1"`
	ManufactureDate *string         `json:"manufacture_date" binding:"omitempty,datetime=2006-01-02"`
	ExpiryDate      *string         `json:"expiry_date" binding:"omitempty,datetime=2006-01-02"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest represents a purchase receipt
type CreatePurchaseRequest struct {
	SupplierID   *uint                 `json:"supplier_id"`
	Reference    *string               `json:"reference" binding:"omitempty,max=100"`
	PurchaseDate *string               `json:"purchase_date" binding:"omitempty,datetime=2006-01-02"`
	Items        []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseFilterRequest represents purchase filter parameters
type PurchaseFilterRequest struct {
	SupplierID *uint  `form:"supplier_id"`
	StartDate  string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}
