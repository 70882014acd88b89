package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
	"github.com/sangkips/stockbook-api/internal/config"
	"github.com/sangkips/stockbook-api/internal/domain/billing"
	"github.com/sangkips/stockbook-api/internal/infrastructure/database"
	"github.com/sangkips/stockbook-api/internal/infrastructure/lock"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/sangkips/stockbook-api/internal/infrastructure/printing"
	"github.com/sangkips/stockbook-api/internal/infrastructure/repository"
	"github.com/sangkips/stockbook-api/internal/presentation/http/handler"
	"github.com/sangkips/stockbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/stockbook-api/internal/presentation/http/routes"
	"github.com/sangkips/stockbook-api/pkg/printer"
	"github.com/sangkips/stockbook-api/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(cfg.Log, cfg.App.Env)
	defer func() { _ = log.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Open(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get database handle", zap.Error(err))
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedAdmin(context.Background(), db, cfg.Admin, log); err != nil {
		log.Warn("failed to seed admin user", zap.Error(err))
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}

	// Numbering lock: Redis when several instances share a database
	var locker service.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, using in-process lock", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			locker = lock.NewRedisLocker(rdb, cfg.Sales.LockTTL, log)
		}
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	lotRepo := repository.NewLotRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	txScope := repository.NewGormTransactionScope(db)

	// Printing
	renderer, err := printing.NewRenderer()
	if err != nil {
		log.Fatal("failed to parse invoice templates", zap.Error(err))
	}
	receiptPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.Address)
	if err != nil {
		log.Warn("failed to initialize printer", zap.Error(err))
		receiptPrinter = printer.NewNullPrinter()
	}
	company := printing.Company{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, lotRepo)
	customerService := service.NewCustomerService(customerRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	lotService := service.NewLotService(lotRepo, txScope)
	purchaseService := service.NewPurchaseService(purchaseRepo, supplierRepo, txScope)
	saleService := service.NewSaleService(txScope, locker, service.SaleServiceConfig{
		TaxRate:          cfg.Sales.TaxRate,
		Numbering:        billing.NewNumbering(cfg.Sales.FiscalStartMonth, cfg.Sales.LegacyInvoicePrefixes),
		NumberingRetries: cfg.Sales.NumberingRetries,
		MaxTxAttempts:    cfg.Sales.MaxTxAttempts,
	})
	invoiceService := service.NewInvoiceService(invoiceRepo, renderer, receiptPrinter, company, cfg.Printer.Width)
	reportService := service.NewReportService(reportRepo, txScope)

	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService),
		Product:  handler.NewProductHandler(productService),
		Customer: handler.NewCustomerHandler(customerService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Lot:      handler.NewLotHandler(lotService),
		Purchase: handler.NewPurchaseHandler(purchaseService),
		Sale:     handler.NewSaleHandler(saleService, invoiceService),
		Report:   handler.NewReportHandler(reportService),
		Health:   handler.NewHealthHandler(sqlDB, invoiceService),
	}

	rateLimiter := routes.DefaultRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	stopJanitor := make(chan struct{})
	defer close(stopJanitor)
	go middleware.RunIdempotencyJanitor(idempotencyRepo, time.Hour, log, stopJanitor)

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Logger:          log,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("app", cfg.App.Name), zap.String("port", port), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
