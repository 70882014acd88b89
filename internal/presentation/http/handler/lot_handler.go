package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
)

// LotHandler handles lot ledger requests
type LotHandler struct {
	lotService *service.LotService
}

// NewLotHandler creates a new lot handler
func NewLotHandler(lotService *service.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// List handles listing lots. With a sku and no paging it returns the lots in
// allocation order, which is what the sale screen shows when picking a batch.
func (h *LotHandler) List(c *gin.Context) {
	var req request.LotFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	if req.SKU != "" && req.Page == 0 && req.Source == "" {
		lots, err := h.lotService.ListBySKU(c.Request.Context(), req.SKU, req.All)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Lots retrieved successfully", lots)
		return
	}

	result, err := h.lotService.ListLots(c.Request.Context(), &repository.LotFilterParams{
		Pagination:   pageParams(req.Page, req.PerPage),
		SKU:          req.SKU,
		Source:       enum.LotSource(req.Source),
		IncludeEmpty: req.All,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Lots retrieved successfully", result)
}

// Create handles receiving an ad-hoc batch
func (h *LotHandler) Create(c *gin.Context) {
	var req request.ReceiveBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	lot, err := h.lotService.ReceiveBatch(c.Request.Context(), &service.ReceiveBatchInput{
		SKU:             req.SKU,
		BatchNo:         req.BatchNo,
		PackSize:        req.PackSize,
		Packs:           req.Packs,
		ManufactureDate: parseDatePtr(req.ManufactureDate),
		ExpiryDate:      parseDatePtr(req.ExpiryDate),
		UnitCost:        req.UnitCost,
		UnitPrice:       req.UnitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Batch received successfully", lot)
}

// Get handles getting a single lot
func (h *LotHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id", "lot")
	if !ok {
		return
	}

	lot, err := h.lotService.GetLot(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lot retrieved successfully", lot)
}

// Update handles editing lot metadata
func (h *LotHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id", "lot")
	if !ok {
		return
	}
	var req request.UpdateLotRequest
	if !bindJSON(c, &req) {
		return
	}

	lot, err := h.lotService.UpdateLot(c.Request.Context(), id, &service.UpdateLotInput{
		BatchNo:         req.BatchNo,
		PackSize:        req.PackSize,
		ManufactureDate: parseDatePtr(req.ManufactureDate),
		ExpiryDate:      parseDatePtr(req.ExpiryDate),
		UnitCost:        req.UnitCost,
		UnitPrice:       req.UnitPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lot updated successfully", lot)
}

// Adjust handles a signed stock correction on one lot
func (h *LotHandler) Adjust(c *gin.Context) {
	id, ok := paramID(c, "id", "lot")
	if !ok {
		return
	}
	var req request.AdjustLotRequest
	if !bindJSON(c, &req) {
		return
	}

	lot, err := h.lotService.AdjustLot(c.Request.Context(), id, req.Units)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Lot adjusted successfully", lot)
}

// Delete removes a lot, or retires it when sales already reference it
func (h *LotHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id", "lot")
	if !ok {
		return
	}

	deleted, err := h.lotService.RemoveLot(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if deleted {
		response.OK(c, "Lot deleted successfully", gin.H{"id": id, "deleted": true})
		return
	}
	response.OK(c, "Lot retired successfully", gin.H{"id": id, "deleted": false, "status": enum.LotStatusRetired})
}
