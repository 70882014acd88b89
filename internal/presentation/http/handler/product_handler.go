package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var req request.ProductFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.productService.ListProducts(c.Request.Context(), &repository.ProductFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		Category:   req.Category,
		Status:     req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		SKU:         req.SKU,
		Name:        req.Name,
		GenericName: req.GenericName,
		BrandName:   req.BrandName,
		Strength:    req.Strength,
		Category:    req.Category,
		Cost:        req.Cost,
		Price:       req.Price,
		Discount:    req.Discount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}
	var req request.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &service.UpdateProductInput{
		Name:        req.Name,
		GenericName: req.GenericName,
		BrandName:   req.BrandName,
		Strength:    req.Strength,
		Category:    req.Category,
		Cost:        req.Cost,
		Price:       req.Price,
		Discount:    req.Discount,
		Status:      req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
