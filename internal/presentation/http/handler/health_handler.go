package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockbook-api/internal/application/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	db       Pinger
	invoices *service.InvoiceService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, invoices *service.InvoiceService) *HealthHandler {
	return &HealthHandler{db: db, invoices: invoices}
}

// Check pings the database and the receipt printer. Only the database
// decides the status code.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  code == http.StatusOK,
		"printer":   h.invoices.PrinterConnected(ctx),
		"timestamp": time.Now().UTC(),
	})
}
