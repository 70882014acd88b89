package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/config"
	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/infrastructure/database"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"github.com/sangkips/stockbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedLots(t *testing.T, repo domainRepo.LotRepository, lots ...*entity.Lot) {
	t.Helper()
	for _, l := range lots {
		if l.Received == 0 {
			l.Received = l.Remaining
		}
		require.NoError(t, repo.Create(context.Background(), l))
	}
}

func TestLotRepository_FIFOOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLotRepository(db)
	ctx := context.Background()

	undated := &entity.Lot{SKU: "AMX", Remaining: 5}
	late := &entity.Lot{SKU: "AMX", ExpiryDate: date(2026, time.March, 1), Remaining: 5}
	early := &entity.Lot{SKU: "AMX", ExpiryDate: date(2025, time.December, 1), Remaining: 5}
	empty := &entity.Lot{SKU: "AMX", ExpiryDate: date(2025, time.January, 1), Remaining: 0, Received: 5}
	retired := &entity.Lot{SKU: "AMX", ExpiryDate: date(2025, time.February, 1), Remaining: 5, Status: enum.LotStatusRetired}
	other := &entity.Lot{SKU: "PCM", ExpiryDate: date(2024, time.January, 1), Remaining: 5}
	seedLots(t, repo, undated, late, early, empty, retired, other)

	lots, err := repo.ListAvailableBySKU(ctx, "AMX")
	require.NoError(t, err)
	ids := make([]uint, len(lots))
	for i, l := range lots {
		ids[i] = l.ID
	}
	assert.Equal(t, []uint{early.ID, late.ID, undated.ID}, ids)

	locked, err := repo.LockAvailableBySKU(ctx, "AMX")
	require.NoError(t, err)
	assert.Len(t, locked, 3)

	all, err := repo.ListAllBySKU(ctx, "AMX")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestLotRepository_DebitIsGuarded(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLotRepository(db)
	ctx := context.Background()

	lot := &entity.Lot{SKU: "AMX", Remaining: 10}
	seedLots(t, repo, lot)

	require.NoError(t, repo.Debit(ctx, lot.ID, 4))

	err := repo.Debit(ctx, lot.ID, 7)
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.ReasonInsufficientStock, appErr.Reason)
	assert.Equal(t, int64(6), appErr.Details["available"])

	got, err := repo.GetByID(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.Remaining)
	assert.True(t, got.SoldAgainst)

	err = repo.DebitSpecific(ctx, "PCM", lot.ID, 1)
	assert.True(t, apperror.HasReason(err, apperror.ReasonInsufficientStock))

	require.NoError(t, repo.DebitSpecific(ctx, "AMX", lot.ID, 6))
	got, _ = repo.GetByID(ctx, lot.ID)
	assert.Zero(t, got.Remaining)
}

func TestLotRepository_CreditAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLotRepository(db)
	ctx := context.Background()

	fresh := &entity.Lot{SKU: "AMX", Remaining: 3}
	sold := &entity.Lot{SKU: "AMX", Remaining: 3}
	seedLots(t, repo, fresh, sold)

	require.NoError(t, repo.Credit(ctx, fresh.ID, 2))
	got, _ := repo.GetByID(ctx, fresh.ID)
	assert.Equal(t, int64(5), got.Remaining)
	assert.Equal(t, int64(5), got.Received)

	err := repo.Credit(ctx, 999, 1)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	require.NoError(t, repo.Debit(ctx, sold.ID, 1))
	err = repo.Delete(ctx, sold.ID)
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	require.NoError(t, repo.Delete(ctx, fresh.ID))
	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLotRepository_RemainingBySKU(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLotRepository(db)

	seedLots(t, repo,
		&entity.Lot{SKU: "AMX", Remaining: 30},
		&entity.Lot{SKU: "AMX", Remaining: 12},
		&entity.Lot{SKU: "AMX", Remaining: 50, Status: enum.LotStatusRetired},
		&entity.Lot{SKU: "PCM", Remaining: 7},
	)

	sums, err := repo.RemainingBySKU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"AMX": 42, "PCM": 7}, sums)
}

func TestLotRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLotRepository(db)

	purchaseID := uint(1)
	seedLots(t, repo,
		&entity.Lot{SKU: "AMX", Remaining: 1},
		&entity.Lot{SKU: "AMX", Remaining: 0, Received: 4},
		&entity.Lot{SKU: "AMX", Remaining: 2, Source: enum.LotSourcePurchase, PurchaseID: &purchaseID},
	)

	lots, total, err := repo.List(context.Background(), &domainRepo.LotFilterParams{SKU: "AMX"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, lots, 2)

	_, total, err = repo.List(context.Background(), &domainRepo.LotFilterParams{
		SKU:          "AMX",
		IncludeEmpty: true,
		Source:       enum.LotSourcePurchase,
		Pagination:   &pagination.PaginationParams{Page: 1, PerPage: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestProductRepository_Quantity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Product{SKU: "AMX", Name: "Amoxicillin", Price: decimal.NewFromInt(100)}))
	require.NoError(t, repo.Create(ctx, &entity.Product{SKU: "PCM", Name: "Paracetamol"}))

	require.NoError(t, repo.AdjustQuantity(ctx, "AMX", 60))
	require.NoError(t, repo.AdjustQuantity(ctx, "AMX", -20))
	err := repo.AdjustQuantity(ctx, "NOPE", 1)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	products, err := repo.GetBySKUs(ctx, []string{"AMX", "PCM", "NOPE"})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, int64(40), products["AMX"].Quantity)

	require.NoError(t, repo.SetQuantity(ctx, "AMX", 7))
	p, err := repo.GetBySKU(ctx, "AMX")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.Quantity)

	list, total, err := repo.List(ctx, &domainRepo.ProductFilterParams{Search: "para"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "PCM", list[0].SKU)
}

func TestCustomerRepository_WalkIns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	key := entity.WalkInKeyFor(" Jane Doe ")
	walkIn := &entity.Customer{Name: "Jane Doe", WalkInKey: &key}
	require.NoError(t, repo.Create(ctx, walkIn))
	require.NoError(t, repo.Create(ctx, &entity.Customer{Name: "Acme Pharmacy", IsDirectory: true}))

	dup := &entity.Customer{Name: "Jane Doe", WalkInKey: &key}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	found, err := repo.FindWalkIn(ctx, "Jane Doe")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, walkIn.ID, found.ID)

	dir, err := repo.FindDirectoryByName(ctx, "Acme Pharmacy")
	require.NoError(t, err)
	require.NotNil(t, dir)
	missing, err := repo.FindDirectoryByName(ctx, "Jane Doe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, total, err := repo.List(ctx, nil, "", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, repo.Delete(ctx, walkIn.ID))
	require.NoError(t, repo.Create(ctx, &entity.Customer{Name: "Jane Doe", WalkInKey: &key}))
}

func TestInvoiceRepository_UniqueNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	newInvoice := func(no string) *entity.Invoice {
		return &entity.Invoice{
			InvoiceNo:    no,
			FiscalCode:   "2526",
			InvoiceDate:  *date(2025, time.June, 1),
			CustomerID:   1,
			CustomerName: "Jane Doe",
			PaymentType:  enum.PaymentTypeCash,
			Lines: []entity.InvoiceLine{
				{Position: 1, SKU: "AMX", ProductName: "Amoxicillin", Quantity: 2, BaseUnits: 2, UnitPrice: decimal.NewFromInt(100), LineTotal: decimal.NewFromInt(200)},
			},
		}
	}

	require.NoError(t, repo.Create(ctx, newInvoice("2526-01")))
	require.NoError(t, repo.Create(ctx, newInvoice("INV-2526-02")))
	require.NoError(t, repo.Create(ctx, newInvoice("2425-40")))

	err := repo.Create(ctx, newInvoice("2526-01"))
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))

	numbers, err := repo.NumbersLike(ctx, []string{"2526-%", "INV-2526-%"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2526-01", "INV-2526-02"}, numbers)

	require.NoError(t, repo.Create(ctx, newInvoice("INV_2526-03")))
	numbers, err = repo.NumbersLike(ctx, billing.NewNumbering(time.April, []string{"INV_"}).Patterns("2526"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2526-01", "INV_2526-03"}, numbers)

	got, err := repo.GetByNumber(ctx, "2526-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "AMX", got.Lines[0].SKU)

	err = db.Model(got).Update("customer_name", "someone else").Error
	assert.True(t, errors.Is(err, entity.ErrInvoiceImmutable))
}

func TestTransactionScope_RollsBack(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	require.NoError(t, NewProductRepository(db).Create(ctx, &entity.Product{SKU: "AMX", Name: "Amoxicillin"}))
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(ctx context.Context, repos domainRepo.TransactionalRepositories) error {
		if err := repos.Lots().Create(ctx, &entity.Lot{SKU: "AMX", Remaining: 10, Received: 10}); err != nil {
			return err
		}
		if err := repos.Products().AdjustQuantity(ctx, "AMX", 10); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var lots int64
	require.NoError(t, db.Model(&entity.Lot{}).Count(&lots).Error)
	assert.Zero(t, lots)
	p, _ := NewProductRepository(db).GetBySKU(ctx, "AMX")
	assert.Zero(t, p.Quantity)
}

func TestTransactionScope_SavePoint(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	err := scope.Execute(ctx, func(ctx context.Context, repos domainRepo.TransactionalRepositories) error {
		if err := repos.Lots().Create(ctx, &entity.Lot{SKU: "AMX", Remaining: 1, Received: 1}); err != nil {
			return err
		}
		if err := repos.SavePoint("sp1"); err != nil {
			return err
		}
		if err := repos.Lots().Create(ctx, &entity.Lot{SKU: "AMX", Remaining: 2, Received: 2}); err != nil {
			return err
		}
		return repos.RollbackTo("sp1")
	})
	require.NoError(t, err)

	sums, err := NewLotRepository(db).RemainingBySKU(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sums["AMX"])
}

func TestIdempotencyRepository_FirstResponseWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()
	user := uuid.New()
	now := time.Now()

	key := func(body string, expires time.Time) *entity.IdempotencyKey {
		return &entity.IdempotencyKey{
			UserID: user, Key: "k-1", Endpoint: "POST /api/v1/sales", RequestHash: "h",
			ResponseCode: 201, ResponseBody: body, ExpiresAt: expires,
		}
	}
	require.NoError(t, repo.Save(ctx, key(`{"n":1}`, now.Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, key(`{"n":2}`, now.Add(time.Hour))))

	got, err := repo.Find(ctx, user, "k-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"n":1}`, got.ResponseBody)
	assert.True(t, got.Matches("POST /api/v1/sales", "h", now))
	assert.False(t, got.Matches("POST /api/v1/purchases", "h", now))

	other, err := repo.Find(ctx, uuid.New(), "k-1")
	require.NoError(t, err)
	assert.Nil(t, other)

	n, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.PurgeExpired(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
