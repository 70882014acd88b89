package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/domain/stock"
	"github.com/sangkips/stockbook-api/internal/infrastructure/database"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleState is the orchestrator's progress through one sale attempt.
type SaleState string

const (
	SaleStarted          SaleState = "started"
	SaleCustomerResolved SaleState = "customer_resolved"
	SaleItemsAllocated   SaleState = "items_allocated"
	SaleNumbered         SaleState = "numbered"
	SalePersisted        SaleState = "persisted"
	SaleCommitted        SaleState = "committed"
	SaleRolledBack       SaleState = "rolled_back"
)

// Locker serialises invoice numbering for one fiscal code.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func())
}

// SaleServiceConfig carries the sale engine settings.
type SaleServiceConfig struct {
	TaxRate          decimal.Decimal
	Numbering        billing.Numbering
	NumberingRetries int
	MaxTxAttempts    int
}

// SaleService records sales: customer, lot debits, invoice and product cache
// change together or not at all.
type SaleService struct {
	txScope repository.TransactionScope
	locker  Locker
	cfg     SaleServiceConfig
	isRetry func(error) bool
	now     func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(txScope repository.TransactionScope, locker Locker, cfg SaleServiceConfig) *SaleService {
	if cfg.NumberingRetries < 1 {
		cfg.NumberingRetries = 1
	}
	if cfg.MaxTxAttempts < 1 {
		cfg.MaxTxAttempts = 1
	}
	return &SaleService{
		txScope: txScope,
		locker:  locker,
		cfg:     cfg,
		isRetry: database.IsTransient,
		now:     time.Now,
	}
}

// SaleCustomerInput names the buyer. Optional fields refresh an existing record.
type SaleCustomerInput struct {
	Name       string
	Phone      *string
	Email      *string
	Address    *string
	VAT        *string
	Route      *string
	SalesRepID *uint
}

// SaleLineInput is one cart line. Quantity is in packs. A nil price or
// discount falls back to the product's list values. BatchRef is either a pin
// token ("PI#42") or a supplier batch number; both pin the line to one lot.
type SaleLineInput struct {
	SKU          string
	Quantity     int64
	PackSize     string
	UnitPrice    *decimal.Decimal
	UnitDiscount *decimal.Decimal
	PinnedLotID  *uint
	BatchRef     string
}

// CreateSaleInput represents the create sale input
type CreateSaleInput struct {
	UserID       *uuid.UUID
	Customer     SaleCustomerInput
	Lines        []SaleLineInput
	PaymentType  enum.PaymentType
	RouteRepCode *string
	SalesRepID   *uint
	SalesRepName *string
	BatchRef     *string
	TaxRate      *decimal.Decimal
	TaxAmount    *decimal.Decimal
	InvoiceDate  *time.Time
}

// SaleResult is returned once the sale has committed.
type SaleResult struct {
	InvoiceID  uint           `json:"invoice_id"`
	InvoiceNo  string         `json:"invoice_no"`
	CustomerID uint           `json:"customer_id"`
	Totals     billing.Totals `json:"totals"`
	State      SaleState      `json:"state"`
	Attempts   int            `json:"attempts"`
}

type saleLine struct {
	input SaleLineInput
	req   stock.Request
	units int64
	// batch is a supplier batch number to resolve to a lot inside the transaction.
	batch string
}

// CreateSale runs the whole sale in one transaction, retrying the
// transaction on numbering conflicts and transient storage errors.
func (s *SaleService) CreateSale(ctx context.Context, input *CreateSaleInput) (*SaleResult, error) {
	log := logger.FromContext(ctx).With(zap.String("sale_id", uuid.NewString()))

	lines, err := s.validate(input)
	if err != nil {
		log.Info("sale rejected", zap.Error(err))
		return nil, err
	}
	date := s.invoiceDate(input)

	for attempt := 1; ; attempt++ {
		result, state, err := s.attempt(ctx, log, input, lines, date)
		if err == nil {
			result.Attempts = attempt
			log.Info("sale committed",
				zap.String("invoice_no", result.InvoiceNo),
				zap.Uint("customer_id", result.CustomerID),
				zap.String("grand_total", billing.Money(result.Totals.GrandTotal)),
				zap.Int("attempts", attempt),
			)
			return result, nil
		}

		retryable := ctx.Err() == nil && (apperror.HasReason(err, apperror.ReasonNumberingConflict) || s.isRetry(err))
		if retryable && attempt < s.cfg.MaxTxAttempts {
			log.Warn("sale attempt rolled back, retrying",
				zap.String("failed_at", string(state)),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		appErr := apperror.GetAppError(err)
		fields := []zap.Field{
			zap.String("state", string(SaleRolledBack)),
			zap.String("failed_at", string(state)),
			zap.Int("attempts", attempt),
			zap.Error(err),
		}
		if appErr.IsClientError() {
			log.Info("sale rolled back", fields...)
		} else {
			log.Error("sale rolled back", fields...)
		}
		return nil, appErr
	}
}

func (s *SaleService) invoiceDate(input *CreateSaleInput) time.Time {
	t := s.now()
	if input.InvoiceDate != nil {
		t = *input.InvoiceDate
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validate rejects malformed requests before any transaction starts.
func (s *SaleService) validate(input *CreateSaleInput) ([]saleLine, error) {
	if strings.TrimSpace(input.Customer.Name) == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "customer.name", Message: "customer name is required"}})
	}
	if len(input.Lines) == 0 {
		return nil, apperror.NewBadRequestError("A sale needs at least one line")
	}
	if input.TaxRate != nil && input.TaxRate.IsNegative() {
		return nil, apperror.NewBadRequestError("Tax rate must not be negative")
	}
	if input.TaxAmount != nil && input.TaxAmount.IsNegative() {
		return nil, apperror.NewBadRequestError("Tax amount must not be negative")
	}
	if input.PaymentType != "" && !input.PaymentType.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown payment type " + string(input.PaymentType))
	}

	lines := make([]saleLine, len(input.Lines))
	for i, in := range input.Lines {
		n := i + 1
		sku := strings.TrimSpace(in.SKU)
		if sku == "" {
			return nil, apperror.NewInvalidLineItemError(n, sku, "sku is required")
		}
		in.BatchRef = strings.TrimSpace(in.BatchRef)
		pin := in.PinnedLotID
		var batch string
		if pin == nil && in.BatchRef != "" {
			id, ok, err := stock.ParseLotReference(in.BatchRef)
			if err != nil {
				return nil, apperror.NewInvalidLineItemError(n, sku, err.Error())
			}
			if ok {
				pin = &id
			} else {
				batch = in.BatchRef
			}
		}
		req := stock.Request{SKU: sku, Packs: in.Quantity, PackSize: in.PackSize, PinnedLotID: pin}
		units, err := stock.Validate(req)
		if err != nil {
			return nil, apperror.NewInvalidLineItemError(n, sku, err.Error())
		}
		if batch != "" && units == 0 {
			return nil, apperror.NewInvalidLineItemError(n, sku, stock.ErrPinnedNonPositive.Error())
		}
		in.SKU = sku
		lines[i] = saleLine{input: in, req: req, units: units, batch: batch}
	}
	return lines, nil
}

func (s *SaleService) attempt(ctx context.Context, log *zap.Logger, input *CreateSaleInput, lines []saleLine, date time.Time) (*SaleResult, SaleState, error) {
	state := SaleStarted
	advance := func(next SaleState) {
		log.Debug("sale state", zap.String("from", string(state)), zap.String("to", string(next)))
		state = next
	}

	release := func() {}
	defer func() { release() }()

	var result *SaleResult
	err := s.txScope.Execute(ctx, func(ctx context.Context, repos repository.TransactionalRepositories) error {
		customer, err := s.resolveCustomer(ctx, repos.Customers(), input.Customer)
		if err != nil {
			return err
		}
		advance(SaleCustomerResolved)

		products, err := s.loadProducts(ctx, repos.Products(), lines)
		if err != nil {
			return err
		}
		invoiceLines, billingLines, err := s.priceLines(lines, products)
		if err != nil {
			return err
		}
		plans, err := s.allocate(ctx, repos.Lots(), lines)
		if err != nil {
			return err
		}
		for i := range lines {
			invoiceLines[i].PinnedLotID = lines[i].req.PinnedLotID
		}
		advance(SaleItemsAllocated)

		totals := s.totals(input, billingLines)
		invoice := &entity.Invoice{
			InvoiceDate:     date,
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			CustomerAddress: customer.Address,
			CustomerVAT:     customer.VAT,
			PaymentType:     input.PaymentType,
			RouteRepCode:    input.RouteRepCode,
			SalesRepID:      input.SalesRepID,
			SalesRepName:    input.SalesRepName,
			BatchRef:        input.BatchRef,
			SubTotal:        totals.SubTotal,
			DiscountTotal:   totals.LineDiscountTotal,
			TaxRate:         totals.TaxRate,
			TaxAmount:       totals.TaxAmount,
			GrandTotal:      totals.GrandTotal,
			CreatedByID:     input.UserID,
			Lines:           invoiceLines,
		}
		if invoice.PaymentType == "" {
			invoice.PaymentType = enum.PaymentTypeCash
		}

		release = s.locker.Acquire(ctx, "invoice-number:"+s.cfg.Numbering.FiscalCode(date))
		if err := s.assignNumber(ctx, repos, invoice); err != nil {
			return err
		}
		advance(SaleNumbered)

		if err := s.applyDebits(ctx, repos, lines, plans); err != nil {
			return err
		}
		advance(SalePersisted)

		result = &SaleResult{
			InvoiceID:  invoice.ID,
			InvoiceNo:  invoice.InvoiceNo,
			CustomerID: customer.ID,
			Totals:     totals,
		}
		return nil
	})
	if err != nil {
		return nil, state, err
	}
	advance(SaleCommitted)
	result.State = state
	return result, state, nil
}

// resolveCustomer prefers a directory customer with the exact name, then an
// existing walk-in, and only then creates a walk-in.
func (s *SaleService) resolveCustomer(ctx context.Context, repo repository.CustomerRepository, in SaleCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(in.Name)

	customer, err := repo.FindDirectoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find directory customer: %w", err)
	}
	if customer == nil {
		customer, err = repo.FindWalkIn(ctx, entity.WalkInKeyFor(name))
		if err != nil {
			return nil, fmt.Errorf("find walk-in customer: %w", err)
		}
	}

	if customer != nil {
		if refreshCustomer(customer, in) {
			if err := repo.Update(ctx, customer); err != nil {
				return nil, fmt.Errorf("refresh customer %d: %w", customer.ID, err)
			}
		}
		return customer, nil
	}

	key := entity.WalkInKeyFor(name)
	customer = &entity.Customer{Name: name, WalkInKey: &key}
	refreshCustomer(customer, in)
	if err := repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create walk-in customer: %w", err)
	}
	return customer, nil
}

func refreshCustomer(c *entity.Customer, in SaleCustomerInput) bool {
	changed := false
	set := func(dst **string, src *string) {
		if src == nil || strings.TrimSpace(*src) == "" {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst == nil || **dst != v {
			*dst = &v
			changed = true
		}
	}
	set(&c.Phone, in.Phone)
	set(&c.Email, in.Email)
	set(&c.Address, in.Address)
	set(&c.VAT, in.VAT)
	set(&c.Route, in.Route)
	if in.SalesRepID != nil && (c.SalesRepID == nil || *c.SalesRepID != *in.SalesRepID) {
		id := *in.SalesRepID
		c.SalesRepID = &id
		changed = true
	}
	return changed
}

func (s *SaleService) loadProducts(ctx context.Context, repo repository.ProductRepository, lines []saleLine) (map[string]entity.Product, error) {
	skus := make([]string, 0, len(lines))
	for _, l := range lines {
		skus = append(skus, l.req.SKU)
	}
	products, err := repo.GetBySKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for i, l := range lines {
		if _, ok := products[l.req.SKU]; !ok {
			return nil, apperror.NewInvalidLineItemError(i+1, l.req.SKU, "unknown sku")
		}
	}
	return products, nil
}

// priceLines snapshots product names and resolves prices before any stock is touched.
func (s *SaleService) priceLines(lines []saleLine, products map[string]entity.Product) ([]entity.InvoiceLine, []billing.Line, error) {
	invoiceLines := make([]entity.InvoiceLine, len(lines))
	billingLines := make([]billing.Line, len(lines))
	for i, l := range lines {
		p := products[l.req.SKU]
		price, discount := p.Price, p.Discount
		if l.input.UnitPrice != nil {
			price = *l.input.UnitPrice
		}
		if l.input.UnitDiscount != nil {
			discount = *l.input.UnitDiscount
		}
		bl := billing.Line{Quantity: l.req.Packs, UnitPrice: price, UnitDiscount: discount}
		if err := bl.Validate(); err != nil {
			return nil, nil, apperror.NewInvalidLineItemError(i+1, l.req.SKU, err.Error())
		}
		billingLines[i] = bl
		invoiceLines[i] = entity.InvoiceLine{
			Position:     i + 1,
			SKU:          l.req.SKU,
			ProductName:  p.Name,
			PackSize:     l.req.PackSize,
			Quantity:     l.req.Packs,
			BaseUnits:    l.units,
			UnitPrice:    price,
			UnitDiscount: discount,
			LineTotal:    bl.LineTotal(),
			PinnedLotID:  l.req.PinnedLotID,
			BatchRef:     l.input.BatchRef,
		}
	}
	return invoiceLines, billingLines, nil
}

// allocate locks the candidate lots SKU by SKU in ascending order and plans
// every line against them. Lines of the same SKU share a reservation tracker.
func (s *SaleService) allocate(ctx context.Context, repo repository.LotRepository, lines []saleLine) ([]stock.Plan, error) {
	var skus []string
	seen := make(map[string]bool)
	for _, l := range lines {
		if l.units > 0 && !seen[l.req.SKU] {
			seen[l.req.SKU] = true
			skus = append(skus, l.req.SKU)
		}
	}
	sort.Strings(skus)

	lots := make(map[string][]entity.Lot, len(skus))
	for _, sku := range skus {
		locked, err := repo.LockAvailableBySKU(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("lock lots for %s: %w", sku, err)
		}
		lots[sku] = locked
	}

	reserved := stock.Reservations{}
	plans := make([]stock.Plan, len(lines))
	for i := range lines {
		if lines[i].batch != "" {
			id, err := s.resolveBatch(ctx, repo, i+1, lines[i], lots[lines[i].req.SKU])
			if err != nil {
				return nil, err
			}
			lines[i].req.PinnedLotID = &id
		}
		l := lines[i]
		if pin := l.req.PinnedLotID; pin != nil {
			if err := s.checkPin(ctx, repo, i+1, l.req.SKU, *pin, lots[l.req.SKU]); err != nil {
				return nil, err
			}
		}
		plan, err := stock.Allocate(l.req, lots[l.req.SKU], reserved)
		if err != nil {
			if apperror.IsAppError(err) {
				return nil, err
			}
			return nil, apperror.NewInvalidLineItemError(i+1, l.req.SKU, err.Error())
		}
		reserved.Reserve(plan)
		plans[i] = plan
	}
	return plans, nil
}

// checkPin turns a pin to a missing lot or to another SKU's lot into a line
// error. Pins to empty or retired lots fall through to the stock check.
func (s *SaleService) checkPin(ctx context.Context, repo repository.LotRepository, n int, sku string, lotID uint, available []entity.Lot) error {
	for i := range available {
		if available[i].ID == lotID {
			return nil
		}
	}
	lot, err := repo.GetByID(ctx, lotID)
	if err != nil {
		return fmt.Errorf("read pinned lot %d: %w", lotID, err)
	}
	if lot == nil {
		return apperror.NewInvalidLineItemError(n, sku, fmt.Sprintf("lot %d does not exist", lotID))
	}
	if lot.SKU != sku {
		return apperror.NewInvalidLineItemError(n, sku, fmt.Sprintf("lot %d belongs to %s", lotID, lot.SKU))
	}
	return nil
}

// resolveBatch finds the active lot of the line's SKU carrying its batch
// number. Locked lots with stock win; an active but empty lot still resolves so
// the shortage reports as INSUFFICIENT_STOCK.
func (s *SaleService) resolveBatch(ctx context.Context, repo repository.LotRepository, n int, l saleLine, available []entity.Lot) (uint, error) {
	for i := range available {
		if available[i].BatchNo == l.batch {
			return available[i].ID, nil
		}
	}
	all, err := repo.ListAllBySKU(ctx, l.req.SKU)
	if err != nil {
		return 0, fmt.Errorf("find batch %s: %w", l.batch, err)
	}
	for i := range all {
		if all[i].BatchNo == l.batch && all[i].Status == enum.LotStatusActive {
			return all[i].ID, nil
		}
	}
	return 0, apperror.NewInvalidLineItemError(n, l.req.SKU, fmt.Sprintf("batch %s not found", l.batch))
}

func (s *SaleService) totals(input *CreateSaleInput, lines []billing.Line) billing.Totals {
	if input.TaxAmount != nil {
		return billing.ComputeWithTaxAmount(lines, *input.TaxAmount)
	}
	rate := s.cfg.TaxRate
	if input.TaxRate != nil {
		rate = *input.TaxRate
	}
	return billing.Compute(lines, rate)
}

// assignNumber inserts the invoice under the next free number. A number taken
// by a concurrent sale rolls back to the savepoint and re-reads the maximum.
func (s *SaleService) assignNumber(ctx context.Context, repos repository.TransactionalRepositories, invoice *entity.Invoice) error {
	code := s.cfg.Numbering.FiscalCode(invoice.InvoiceDate)
	var lastErr error
	for attempt := 1; attempt <= s.cfg.NumberingRetries; attempt++ {
		existing, err := repos.Invoices().NumbersLike(ctx, s.cfg.Numbering.Patterns(code))
		if err != nil {
			return fmt.Errorf("scan invoice numbers: %w", err)
		}
		invoice.InvoiceNo, invoice.Sequence = s.cfg.Numbering.Next(invoice.InvoiceDate, existing)
		invoice.FiscalCode = code

		savepoint := fmt.Sprintf("invoice_number_%d", attempt)
		if err := repos.SavePoint(savepoint); err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
		err = repos.Invoices().Create(ctx, invoice)
		if err == nil {
			return nil
		}
		if !database.IsDuplicateKey(err) {
			return fmt.Errorf("insert invoice: %w", err)
		}
		lastErr = err
		if err := repos.RollbackTo(savepoint); err != nil {
			return fmt.Errorf("rollback to savepoint: %w", err)
		}
		invoice.ID = 0
		for i := range invoice.Lines {
			invoice.Lines[i].ID = 0
			invoice.Lines[i].InvoiceID = 0
		}
	}
	return apperror.NewNumberingConflictError(code, s.cfg.NumberingRetries, lastErr)
}

// applyDebits debits each lot once with the units of every line that drew on
// it, then moves the product cache by the base units sold per SKU.
func (s *SaleService) applyDebits(ctx context.Context, repos repository.TransactionalRepositories, lines []saleLine, plans []stock.Plan) error {
	lotSKU := make(map[uint]string)
	pinned := make(map[uint]bool)
	soldBySKU := make(map[string]int64)
	for i, p := range plans {
		for _, a := range p.Allocations {
			lotSKU[a.LotID] = p.SKU
			if lines[i].req.PinnedLotID != nil {
				pinned[a.LotID] = true
			}
		}
		soldBySKU[p.SKU] += p.Required
	}

	perLot := stock.Total(plans)
	ids := make([]uint, 0, len(perLot))
	for id := range perLot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lots := repos.Lots()
	for _, id := range ids {
		var err error
		if pinned[id] {
			err = lots.DebitSpecific(ctx, lotSKU[id], id, perLot[id])
		} else {
			err = lots.Debit(ctx, id, perLot[id])
		}
		if err != nil {
			if apperror.IsAppError(err) {
				return err
			}
			return fmt.Errorf("debit lot %d: %w", id, err)
		}
	}

	skus := make([]string, 0, len(soldBySKU))
	for sku := range soldBySKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	for _, sku := range skus {
		if err := repos.Products().AdjustQuantity(ctx, sku, -soldBySKU[sku]); err != nil {
			return fmt.Errorf("adjust product cache for %s: %w", sku, err)
		}
	}
	return nil
}
