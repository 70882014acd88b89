package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/config"
	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/infrastructure/database"
	"github.com/sangkips/stockbook-api/internal/infrastructure/lock"
	"github.com/sangkips/stockbook-api/internal/infrastructure/printing"
	infraRepo "github.com/sangkips/stockbook-api/internal/infrastructure/repository"
	"github.com/sangkips/stockbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/stockbook-api/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type envelope struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Errors    []map[string]string    `json:"errors"`
	ErrorCode string                 `json:"error_code"`
	Retryable bool                   `json:"retryable"`
}

type failingScope struct{}

func (failingScope) Execute(context.Context, func(context.Context, repository.TransactionalRepositories) error) error {
	return errors.New("pq: connection reset by peer")
}

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

func newSaleRouter(t *testing.T, db *gorm.DB, scope repository.TransactionScope) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	sales := service.NewSaleService(scope, lock.NewLocalLocker(), service.SaleServiceConfig{
		TaxRate:          decimal.RequireFromString("0.18"),
		Numbering:        billing.NewNumbering(time.April, nil),
		NumberingRetries: 3,
		MaxTxAttempts:    2,
	})
	renderer, err := printing.NewRenderer()
	require.NoError(t, err)
	invoices := service.NewInvoiceService(infraRepo.NewInvoiceRepository(db), renderer, printer.NewNullPrinter(),
		printing.Company{Name: "Stockbook Pharmacy"}, 42)
	h := NewSaleHandler(sales, invoices)

	r := gin.New()
	userID := uuid.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/sales", h.Create)
	r.GET("/sales/:invoice_no", h.Get)
	r.GET("/sales/:invoice_no/print", h.Print)
	return r
}

func seedStock(t *testing.T, db *gorm.DB, sku string, units int64) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Product{
		SKU:      sku,
		Name:     sku + " tablets",
		Price:    decimal.NewFromInt(100),
		Discount: decimal.NewFromInt(10),
		Quantity: units,
	}).Error)
	require.NoError(t, db.Create(&entity.Lot{SKU: sku, Received: units, Remaining: units}).Error)
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestSaleHandler_Create(t *testing.T) {
	db := setupTestDB(t)
	seedStock(t, db, "AMX", 10)
	r := newSaleRouter(t, db, infraRepo.NewGormTransactionScope(db))

	w, env := do(r, http.MethodPost, "/sales",
		`{"customer":{"name":"Jane Doe"},"items":[{"sku":"AMX","quantity":2}],"payment_type":" Cash "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Regexp(t, `^\d{4}-01$`, env.Data["invoice_no"])
	assert.Equal(t, "212.4", env.Data["grand_total"])
	assert.Equal(t, "committed", env.Data["state"])

	no := env.Data["invoice_no"].(string)
	w, env = do(r, http.MethodGet, "/sales/"+no, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cash", env.Data["payment_type"])
}

func TestSaleHandler_CreateClientErrors(t *testing.T) {
	db := setupTestDB(t)
	seedStock(t, db, "AMX", 3)
	r := newSaleRouter(t, db, infraRepo.NewGormTransactionScope(db))

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"insufficient stock", `{"customer":{"name":"A"},"items":[{"sku":"AMX","quantity":4}]}`, http.StatusBadRequest, "INSUFFICIENT_STOCK"},
		{"unknown sku", `{"customer":{"name":"A"},"items":[{"sku":"NOPE","quantity":1}]}`, http.StatusBadRequest, "INVALID_LINE_ITEM"},
		{"negative quantity", `{"customer":{"name":"A"},"items":[{"sku":"AMX","quantity":-1}]}`, http.StatusBadRequest, "INVALID_LINE_ITEM"},
		{"missing customer", `{"customer":{},"items":[{"sku":"AMX","quantity":1}]}`, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"bad date", `{"customer":{"name":"A"},"items":[],"invoice_date":"01/06/2025"}`, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(r, http.MethodPost, "/sales", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.ErrorCode)
			assert.False(t, env.Retryable)
		})
	}

	w, _ := do(r, http.MethodPost, "/sales", `{"customer":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var lot entity.Lot
	require.NoError(t, db.First(&lot).Error)
	assert.Equal(t, int64(3), lot.Remaining)
}

func TestSaleHandler_PersistenceFailure(t *testing.T) {
	db := setupTestDB(t)
	r := newSaleRouter(t, db, failingScope{})

	w, env := do(r, http.MethodPost, "/sales", `{"customer":{"name":"A"},"items":[{"sku":"AMX","quantity":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "PERSISTENCE_FAILURE", env.ErrorCode)
	assert.True(t, env.Retryable)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestSaleHandler_Print(t *testing.T) {
	db := setupTestDB(t)
	seedStock(t, db, "AMX", 10)
	r := newSaleRouter(t, db, infraRepo.NewGormTransactionScope(db))

	_, env := do(r, http.MethodPost, "/sales", `{"customer":{"name":"Jane Doe"},"items":[{"sku":"AMX","quantity":2}]}`)
	no := env.Data["invoice_no"].(string)

	w, _ := do(r, http.MethodGet, "/sales/"+no+"/print", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, w.Body.String(), no)

	w, _ = do(r, http.MethodGet, "/sales/"+no+"/print?format=thermal", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("X-Printer-Status"))

	w, _ = do(r, http.MethodGet, "/sales/"+no+"/print?format=thermal&send=true", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(r, http.MethodGet, "/sales/"+no+"/print?final_discount=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodGet, "/sales/"+no+"/print?final_discount=5000", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodGet, "/sales/"+no+"/print?format=pdf", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = do(r, http.MethodGet, "/sales/2526-99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
