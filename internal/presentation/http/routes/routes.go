package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/config"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	domainRepo "github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/presentation/http/handler"
	"github.com/sangkips/stockbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/stockbook-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Supplier *handler.SupplierHandler
	Lot      *handler.LotHandler
	Purchase *handler.PurchaseHandler
	Sale     *handler.SaleHandler
	Report   *handler.ReportHandler
	Health   *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Check)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

// DefaultRateLimiter builds the per-client limiter from config.
func DefaultRateLimiter(cfg config.RateLimitConfig) *middleware.ClientRateLimiter {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 {
		rl.Requests = cfg.Requests
	}
	if cfg.Duration > 0 {
		rl.Window = time.Duration(cfg.Duration) * time.Second
	}
	return middleware.NewClientRateLimiter(rl)
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/auth/me", h.Auth.Me)

	registerUserRoutes(protected, h)
	registerProductRoutes(protected, h)
	registerCustomerRoutes(protected, h)
	registerSupplierRoutes(protected, h)
	registerLotRoutes(protected, h)
	registerPurchaseRoutes(protected, h, deps)
	registerSaleRoutes(protected, h, deps)
	registerReportRoutes(protected, h)
}

func registerUserRoutes(protected *gin.RouterGroup, h *Handlers) {
	users := protected.Group("/users")
	users.Use(middleware.RequireRole("admin"))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", middleware.RequirePermission(entity.PermStockView), h.Product.List)
		products.GET("/:id", middleware.RequirePermission(entity.PermStockView), h.Product.Get)

		manage := products.Group("")
		manage.Use(middleware.RequirePermission(entity.PermCatalogManage))
		manage.POST("", h.Product.Create)
		manage.PUT("/:id", h.Product.Update)
		manage.DELETE("/:id", h.Product.Delete)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(entity.PermPartiesManage))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerSupplierRoutes(protected *gin.RouterGroup, h *Handlers) {
	suppliers := protected.Group("/suppliers")
	suppliers.Use(middleware.RequirePermission(entity.PermPartiesManage))
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Delete)
	}
}

func registerLotRoutes(protected *gin.RouterGroup, h *Handlers) {
	lots := protected.Group("/lots")
	{
		lots.GET("", middleware.RequirePermission(entity.PermStockView), h.Lot.List)
		lots.GET("/:id", middleware.RequirePermission(entity.PermStockView), h.Lot.Get)

		manage := lots.Group("")
		manage.Use(middleware.RequirePermission(entity.PermStockManage))
		manage.POST("", h.Lot.Create)
		manage.PUT("/:id", h.Lot.Update)
		manage.POST("/:id/credit", h.Lot.Adjust)
		manage.DELETE("/:id", h.Lot.Delete)
	}
}

func registerPurchaseRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	purchases := protected.Group("/purchases")
	purchases.Use(middleware.RequirePermission(entity.PermStockManage))
	{
		purchases.GET("", h.Purchase.List)
		purchases.POST("", middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo}), h.Purchase.Create)
		purchases.GET("/:id", h.Purchase.Get)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	sales := protected.Group("/sales")
	{
		// a retried sale must not debit stock twice
		sales.POST("", middleware.RequirePermission(entity.PermSalesCreate), middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Sale.Create)

		view := sales.Group("")
		view.Use(middleware.RequirePermission(entity.PermSalesView))
		view.GET("", h.Sale.List)
		view.GET("/:invoice_no", h.Sale.Get)
		view.GET("/:invoice_no/print", h.Sale.Print)
	}
}

func registerReportRoutes(protected *gin.RouterGroup, h *Handlers) {
	reports := protected.Group("/reports")
	{
		reports.GET("/stock", middleware.RequirePermission(entity.PermReportsView), h.Report.Stock)
		reports.GET("/sales/daily", middleware.RequirePermission(entity.PermReportsView), h.Report.DailySales)
		reports.POST("/stock/reconcile", middleware.RequirePermission(entity.PermReportsMaintain), h.Report.Reconcile)
	}
}
