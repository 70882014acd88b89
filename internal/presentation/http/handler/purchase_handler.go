package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchaseService *service.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// List handles listing purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var req request.PurchaseFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.purchaseService.ListPurchases(c.Request.Context(), &repository.PurchaseFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		SupplierID: req.SupplierID,
		StartDate:  parseDate(req.StartDate),
		EndDate:    parseDate(req.EndDate),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Purchases retrieved successfully", result)
}

// Create handles recording a purchase and its lots
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req request.CreatePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.PurchaseItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.PurchaseItemInput{
			SKU:             item.SKU,
			BatchNo:         item.BatchNo,
			PackSize:        item.PackSize,
			Packs:           item.Packs,
			ManufactureDate: parseDatePtr(item.ManufactureDate),
			ExpiryDate:      parseDatePtr(item.ExpiryDate),
			UnitCost:        item.UnitCost,
			UnitPrice:       item.UnitPrice,
		}
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), &service.CreatePurchaseInput{
		UserID:       GetUserID(c),
		SupplierID:   req.SupplierID,
		Reference:    req.Reference,
		PurchaseDate: parseDatePtr(req.PurchaseDate),
		Items:        items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Purchase recorded successfully", purchase)
}

// Get handles getting a purchase with its lots
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Purchase retrieved successfully", purchase)
}
