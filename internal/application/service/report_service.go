package service

import (
	"context"
	"sort"
	"time"

	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportService handles the read-only reports and cache reconciliation
type ReportService struct {
	reportRepo repository.ReportRepository
	txScope    repository.TransactionScope
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepository, txScope repository.TransactionScope) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		txScope:    txScope,
	}
}

// StockLine is one product on the stock report
type StockLine struct {
	ProductID  uint            `json:"product_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   int64           `json:"quantity"`
	CachedQty  int64           `json:"cached_quantity"`
	ActiveLots int             `json:"active_lots"`
	NextExpiry *time.Time      `json:"next_expiry,omitempty"`
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
	StockValue decimal.Decimal `json:"stock_value"`
	Drift      bool            `json:"drift"`
}

// StockReport is the stock report with its grand total
type StockReport struct {
	Lines      []StockLine     `json:"lines"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// StockSummary reports quantity from the lots, valued at cost. Drift marks
// products whose cached quantity disagrees with the lots.
func (s *ReportService) StockSummary(ctx context.Context) (*StockReport, error) {
	rows, err := s.reportRepo.StockSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := &StockReport{Lines: make([]StockLine, 0, len(rows)), TotalValue: decimal.Zero}
	for _, r := range rows {
		value := r.Cost.Mul(decimal.NewFromInt(r.LotQty))
		report.Lines = append(report.Lines, StockLine{
			ProductID:  r.ProductID,
			SKU:        r.SKU,
			Name:       r.Name,
			Quantity:   r.LotQty,
			CachedQty:  r.CachedQty,
			ActiveLots: r.ActiveLots,
			NextExpiry: r.NextExpiry,
			Cost:       r.Cost,
			Price:      r.Price,
			StockValue: value,
			Drift:      r.CachedQty != r.LotQty,
		})
		report.TotalValue = report.TotalValue.Add(value)
	}
	return report, nil
}

// DailySales reports invoice counts and totals per day in [from, to]
func (s *ReportService) DailySales(ctx context.Context, from, to time.Time) ([]repository.DailySales, error) {
	return s.reportRepo.DailySales(ctx, from, to)
}

// ReconcileResult lists the products whose cache was rewritten
type ReconcileResult struct {
	Checked   int              `json:"checked"`
	Corrected map[string]int64 `json:"corrected"`
}

// Reconcile recomputes every product's cached quantity from its active lots.
func (s *ReportService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	rows, err := s.reportRepo.StockSummary(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SKU < rows[j].SKU })
	result := &ReconcileResult{Corrected: make(map[string]int64)}

	err = s.txScope.Execute(ctx, func(ctx context.Context, repos repository.TransactionalRepositories) error {
		sums, err := repos.Lots().RemainingBySKU(ctx)
		if err != nil {
			return err
		}

		result.Checked = len(rows)
		for _, r := range rows {
			want := sums[r.SKU]
			if r.CachedQty == want {
				continue
			}
			if err := repos.Products().SetQuantity(ctx, r.SKU, want); err != nil {
				return err
			}
			result.Corrected[r.SKU] = want
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("stock cache reconciled",
		zap.Int("checked", result.Checked),
		zap.Int("corrected", len(result.Corrected)),
	)
	return result, nil
}
