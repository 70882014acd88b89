package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/infrastructure/printing"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// SaleHandler handles sale and invoice requests
type SaleHandler struct {
	saleService    *service.SaleService
	invoiceService *service.InvoiceService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService, invoiceService *service.InvoiceService) *SaleHandler {
	return &SaleHandler{
		saleService:    saleService,
		invoiceService: invoiceService,
	}
}

// Create handles recording a sale
// @Summary Create sale
// @Tags sales
// @Accept json
// @Produce json
// @Param request body request.CreateSaleRequest true "Sale"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 500 {object} response.APIResponse
// @Router /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	var req request.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]service.SaleLineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.SaleLineInput{
			SKU:          item.SKU,
			Quantity:     item.Quantity,
			PackSize:     item.PackSize,
			UnitPrice:    item.UnitPrice,
			UnitDiscount: item.UnitDiscount,
			PinnedLotID:  item.LotID,
			BatchRef:     item.BatchNo,
		}
	}

	result, err := h.saleService.CreateSale(c.Request.Context(), &service.CreateSaleInput{
		UserID: GetUserID(c),
		Customer: service.SaleCustomerInput{
			Name:       req.Customer.Name,
			Phone:      req.Customer.Phone,
			Email:      req.Customer.Email,
			Address:    req.Customer.Address,
			VAT:        req.Customer.VAT,
			Route:      req.Customer.Route,
			SalesRepID: req.Customer.SalesRepID,
		},
		Lines:        lines,
		PaymentType:  enum.PaymentType(strings.ToLower(strings.TrimSpace(req.PaymentType))),
		RouteRepCode: req.RouteRepCode,
		SalesRepID:   req.SalesRepID,
		SalesRepName: req.SalesRepName,
		BatchRef:     req.BatchNo,
		TaxRate:      req.TaxRate,
		TaxAmount:    req.TaxAmount,
		InvoiceDate:  parseDatePtr(req.InvoiceDate),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale recorded successfully", gin.H{
		"invoice_id":     result.InvoiceID,
		"invoice_no":     result.InvoiceNo,
		"customer_id":    result.CustomerID,
		"sub_total":      result.Totals.SubTotal,
		"discount_total": result.Totals.LineDiscountTotal,
		"tax_rate":       result.Totals.TaxRate,
		"tax_amount":     result.Totals.TaxAmount,
		"grand_total":    result.Totals.GrandTotal,
		"state":          result.State,
	})
}

// List handles listing invoices
func (h *SaleHandler) List(c *gin.Context) {
	var req request.SaleFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), &repository.InvoiceFilterParams{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		CustomerID: req.CustomerID,
		StartDate:  parseDate(req.StartDate),
		EndDate:    parseDate(req.EndDate),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Get handles getting an invoice by number
func (h *SaleHandler) Get(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("invoice_no"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Print renders an invoice as HTML or ESC/POS bytes. With send=true a thermal
// render is also pushed to the receipt printer.
func (h *SaleHandler) Print(c *gin.Context) {
	var req request.PrintInvoiceRequest
	if !bindQuery(c, &req) {
		return
	}

	discount := decimal.Zero
	if s := strings.TrimSpace(req.FinalDiscount); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			response.BadRequest(c, "final_discount must be a number")
			return
		}
		discount = d
	}

	out, err := h.invoiceService.PrintInvoice(c.Request.Context(), c.Param("invoice_no"), &service.PrintInput{
		Format: req.Format,
		Options: printing.Options{
			OffsetX:        req.OffsetX,
			OffsetY:        req.OffsetY,
			Scale:          req.Scale,
			FontSizePt:     req.FontSize,
			ShowBackground: req.ShowBg,
			BackgroundURL:  req.BgURL,
		},
		FinalDiscount: discount,
		Send:          req.Send,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if out.Sent {
		c.Header("X-Printer-Status", "sent")
	}
	c.Data(http.StatusOK, out.ContentType, out.Body)
}
