package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	SKU         string          `json:"sku" binding:"required,sku"`
	Name        string          `json:"name" binding:"required,min=2,max=255"`
	GenericName *string         `json:"generic_name" binding:"omitempty,max=255"`
	BrandName   *string         `json:"brand_name" binding:"omitempty,max=255"`
	Strength    *string         `json:"strength" binding:"omitempty,max=100"`
	Category    *string         `json:"category" binding:"omitempty,max=100"`
	Cost        decimal.Decimal `json:"cost"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
}

// UpdateProductRequest represents a product update request. The SKU is fixed
// once created.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=255"`
	GenericName *string          `json:"generic_name" binding:"omitempty,max=255"`
	BrandName   *string          `json:"brand_name" binding:"omitempty,max=255"`
	Strength    *string          `json:"strength" binding:"omitempty,max=100"`
	Category    *string          `json:"category" binding:"omitempty,max=100"`
	Cost        *decimal.Decimal `json:"cost"`
	Price       *decimal.Decimal `json:"price"`
	Discount    *decimal.Decimal `json:"discount"`
	Status      *string          `json:"status" binding:"omitempty,oneof=active inactive"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
