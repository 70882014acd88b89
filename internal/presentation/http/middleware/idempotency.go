package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/internal/domain/repository"
	"github.com/sangkips/stockbook-api/internal/infrastructure/logger"
	"github.com/sangkips/stockbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockbook-api/pkg/apperror"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyTTL is how long a stored response can be replayed
	DefaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
}

// bodyRecorder tees the response body so it can be stored for replay
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a client repeats a write with
// the same Idempotency-Key and body. The same key with a different body is a
// 409. Server failures are not stored, so a retry after a 5xx runs again.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		userID, ok := c.Value("user_id").(uuid.UUID)
		if key == "" || !ok || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		endpoint := c.Request.Method + " " + c.FullPath()
		hash := requestHash(endpoint, body)
		now := time.Now()

		existing, err := cfg.Repo.Find(ctx, userID, key)
		if err != nil {
			log.Warn("idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if existing != nil && now.Before(existing.ExpiresAt) {
			if !existing.Matches(endpoint, hash, now) {
				response.Error(c, apperror.NewConflictError("Idempotency-Key was already used for a different request"))
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		err = cfg.Repo.Save(ctx, &entity.IdempotencyKey{
			UserID:       userID,
			Key:          key,
			Endpoint:     endpoint,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: rec.body.String(),
			ExpiresAt:    now.Add(cfg.TTL),
		})
		if err != nil {
			log.Warn("idempotency key not stored", zap.String("key", key), zap.Error(err))
		}
	}
}

func requestHash(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// RunIdempotencyJanitor deletes expired keys every interval until stop is
// closed.
func RunIdempotencyJanitor(repo repository.IdempotencyRepository, interval time.Duration, log *zap.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := repo.PurgeExpired(ctx, time.Now())
			cancel()
			if err != nil {
				log.Warn("idempotency purge failed", zap.Error(err))
			} else if n > 0 {
				log.Debug("idempotency keys purged", zap.Int64("count", n))
			}
		case <-stop:
			return
		}
	}
}
