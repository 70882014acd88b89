package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockbook-api/pkg/apperror"
)

// ReportHandler serves stock and sales reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Stock returns stock on hand per product
func (h *ReportHandler) Stock(c *gin.Context) {
	report, err := h.reportService.StockSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock report generated", report)
}

// Reconcile rewrites product quantities from the lot ledger
func (h *ReportHandler) Reconcile(c *gin.Context) {
	result, err := h.reportService.Reconcile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock reconciled", result)
}

// DailySales returns invoice totals per day. The range defaults to the last
// 30 days and both ends are inclusive.
func (h *ReportHandler) DailySales(c *gin.Context) {
	var req request.ReportRangeRequest
	if !bindQuery(c, &req) {
		return
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	if t := parseDate(req.To); t != nil {
		to = *t
	}
	from := to.AddDate(0, 0, -29)
	if f := parseDate(req.From); f != nil {
		from = *f
	}
	if from.After(to) {
		response.Error(c, apperror.NewBadRequestError("from must not be after to"))
		return
	}

	rows, err := h.reportService.DailySales(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Daily sales generated", rows)
}
