package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StockRow is one line of the stock report.
type StockRow struct {
	ProductID  uint
	SKU        string
	Name       string
	Cost       decimal.Decimal
	Price      decimal.Decimal
	CachedQty  int64
	LotQty     int64
	ActiveLots int
	NextExpiry *time.Time
}

// DailySales aggregates committed invoices per invoice date.
type DailySales struct {
	Date         time.Time
	InvoiceCount int
	GrandTotal   decimal.Decimal
}

// ReportRepository runs the read-only aggregation queries behind the reports.
type ReportRepository interface {
	StockSummary(ctx context.Context) ([]StockRow, error)
	DailySales(ctx context.Context, from, to time.Time) ([]DailySales, error)
}
