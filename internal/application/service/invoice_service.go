package service

import (
	"context"
	"errors"

	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/sangkips/stockbook-api/internal/infrastructure/printing"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/sangkips/stockbook-api/pkg/pagination"
	"github.com/sangkips/stockbook-api/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService reads committed invoices and prints them.
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	renderer     *printing.Renderer
	printer      printer.Printer
	company      printing.Company
	thermalWidth int
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	renderer *printing.Renderer,
	p printer.Printer,
	company printing.Company,
	thermalWidth int,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		renderer:     renderer,
		printer:      p,
		company:      company,
		thermalWidth: thermalWidth,
	}
}

// ListInvoices lists invoice headers, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) (*pagination.PaginatedResult[entity.Invoice], error) {
	invoices, total, err := s.invoiceRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// GetInvoice retrieves an invoice with its lines by number
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice " + invoiceNo)
	}
	return invoice, nil
}

// PrintInput selects the layout and placement of a printed invoice.
// FinalDiscount is a bill-level discount shown on paper only.
type PrintInput struct {
	Format        string
	Options       printing.Options
	FinalDiscount decimal.Decimal
	Send          bool
}

// PrintOutput is the rendered document.
type PrintOutput struct {
	ContentType string
	Body        []byte
	Sent        bool
}

// PrintInvoice renders an invoice. Thermal output can also be pushed to the
// configured receipt printer.
func (s *InvoiceService) PrintInvoice(ctx context.Context, invoiceNo string, input *PrintInput) (*PrintOutput, error) {
	layout, err := printing.ParseLayout(input.Format)
	if err != nil {
		return nil, apperror.NewBadRequestError(err.Error())
	}
	if input.Send && layout != printing.LayoutThermal {
		return nil, apperror.NewBadRequestError("Only thermal output can be sent to the printer")
	}

	invoice, err := s.GetInvoice(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	view, err := printing.NewView(s.company, invoice, input.FinalDiscount, input.Options)
	if err != nil {
		if errors.Is(err, billing.ErrDiscountTooLarge) || errors.Is(err, billing.ErrNegativeAmount) {
			return nil, apperror.NewBadRequestError("final_discount: " + err.Error())
		}
		return nil, err
	}

	if layout != printing.LayoutThermal {
		body, err := s.renderer.RenderHTML(layout, view)
		if err != nil {
			return nil, err
		}
		return &PrintOutput{ContentType: "text/html; charset=utf-8", Body: body}, nil
	}

	out := &PrintOutput{
		ContentType: "application/octet-stream",
		Body:        printing.RenderThermal(view, s.thermalWidth),
	}
	if !input.Send {
		return out, nil
	}
	if err := s.printer.Print(ctx, out.Body); err != nil {
		logger.FromContext(ctx).Warn("receipt print failed", zap.String("invoice_no", invoiceNo), zap.Error(err))
		if errors.Is(err, printer.ErrNotConfigured) {
			return nil, apperror.NewConflictError("No receipt printer is configured")
		}
		return nil, apperror.NewAppError(502, "Receipt printer is unreachable")
	}
	out.Sent = true
	return out, nil
}

// PrinterConnected reports whether the receipt printer answers.
func (s *InvoiceService) PrinterConnected(ctx context.Context) bool {
	return s.printer.IsConnected(ctx)
}
