package repository

import (
	"context"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

// StockSummary folds the active lots into one row per product. Aggregation
// happens in Go so date columns scan the same way on every driver.
func (r *reportRepository) StockSummary(ctx context.Context) ([]domainRepo.StockRow, error) {
	var products []entity.Product
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}

	var lots []entity.Lot
	err := r.db.WithContext(ctx).
		Select("sku", "remaining", "expiry_date").
		Where("status = ? AND remaining > 0", enum.LotStatusActive).
		Find(&lots).Error
	if err != nil {
		return nil, err
	}

	bySKU := make(map[string]*domainRepo.StockRow, len(products))
	rows := make([]domainRepo.StockRow, len(products))
	for i, p := range products {
		rows[i] = domainRepo.StockRow{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			Cost:      p.Cost,
			Price:     p.Price,
			CachedQty: p.Quantity,
		}
		bySKU[p.SKU] = &rows[i]
	}
	for _, l := range lots {
		row, ok := bySKU[l.SKU]
		if !ok {
			continue
		}
		row.LotQty += l.Remaining
		row.ActiveLots++
		if l.ExpiryDate != nil && (row.NextExpiry == nil || l.ExpiryDate.Before(*row.NextExpiry)) {
			exp := *l.ExpiryDate
			row.NextExpiry = &exp
		}
	}
	return rows, nil
}

func (r *reportRepository) DailySales(ctx context.Context, from, to time.Time) ([]domainRepo.DailySales, error) {
	var invoices []entity.Invoice
	err := r.db.WithContext(ctx).
		Select("invoice_date", "grand_total").
		Where("invoice_date >= ? AND invoice_date <= ?", from, to).
		Order("invoice_date ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	var out []domainRepo.DailySales
	for _, inv := range invoices {
		d := time.Date(inv.InvoiceDate.Year(), inv.InvoiceDate.Month(), inv.InvoiceDate.Day(), 0, 0, 0, 0, time.UTC)
		if n := len(out); n > 0 && out[n-1].Date.Equal(d) {
			out[n-1].InvoiceCount++
			out[n-1].GrandTotal = out[n-1].GrandTotal.Add(inv.GrandTotal)
			continue
		}
		out = append(out, domainRepo.DailySales{Date: d, InvoiceCount: 1, GrandTotal: decimal.Zero.Add(inv.GrandTotal)})
	}
	return out, nil
}
