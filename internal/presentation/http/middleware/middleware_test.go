package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockbook-api/internal/domain/entity"
	"github.com/sangkips/stockbook-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	r := gin.New()
	r.GET("/stock", AuthMiddleware(jwtManager), RequirePermission(entity.PermStockView), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/users", AuthMiddleware(jwtManager), RequireRole("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	viewer, err := jwtManager.GenerateAccessToken(uuid.New(), "rep@example.com", "reporter", []string{entity.PermStockView})
	require.NoError(t, err)
	refresh, err := jwtManager.GenerateRefreshToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"no header", "/stock", "", http.StatusUnauthorized},
		{"not bearer", "/stock", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "/stock", "Bearer abc", http.StatusUnauthorized},
		{"refresh token", "/stock", "Bearer " + refresh, http.StatusUnauthorized},
		{"permitted", "/stock", "Bearer " + viewer, http.StatusOK},
		{"wrong role", "/users", "Bearer " + viewer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.auth != "" {
				header["Authorization"] = tt.auth
			}
			w := serve(r, http.MethodGet, tt.path, header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequirePermission_Missing(t *testing.T) {
	r := gin.New()
	r.POST("/sales", func(c *gin.Context) {
		c.Set("user_permissions", []string{entity.PermSalesView})
		c.Next()
	}, RequirePermission(entity.PermSalesCreate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := serve(r, http.MethodPost, "/sales", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type memoryKeys struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func (m *memoryKeys) Find(_ context.Context, userID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[userID.String()+"/"+key], nil
}

func (m *memoryKeys) Save(_ context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := ikey.UserID.String() + "/" + ikey.Key
	if _, ok := m.keys[id]; !ok {
		m.keys[id] = ikey
	}
	return nil
}

func (m *memoryKeys) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, k := range m.keys {
		if k.ExpiresAt.Before(before) {
			delete(m.keys, id)
			n++
		}
	}
	return n, nil
}

func post(r http.Handler, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	repo := &memoryKeys{keys: make(map[string]*entity.IdempotencyKey)}
	userID := uuid.New()
	calls := 0
	status := http.StatusCreated

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/sales", Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		calls++
		c.JSON(status, gin.H{"call": calls, "sku": body["sku"]})
	})

	first := post(r, `{"sku":"AMX"}`, "k-1")
	second := post(r, `{"sku":"AMX"}`, "k-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, calls)

	reused := post(r, `{"sku":"PCM"}`, "k-1")
	assert.Equal(t, http.StatusConflict, reused.Code)
	assert.Equal(t, 1, calls)

	post(r, `{"sku":"AMX"}`, "")
	assert.Equal(t, 2, calls)

	status = http.StatusInternalServerError
	post(r, `{"sku":"AMX"}`, "k-2")
	post(r, `{"sku":"AMX"}`, "k-2")
	assert.Equal(t, 4, calls)

	n, err := repo.PurgeExpired(context.Background(), time.Now().Add(DefaultIdempotencyTTL+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClientRateLimiter(t *testing.T) {
	rl := NewClientRateLimiter(RateLimiterConfig{Requests: 2, Window: time.Hour})
	defer rl.Stop()

	r := gin.New()
	r.GET("/ping", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodGet, "/ping", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, strconv.Itoa(2), w.Header().Get("X-RateLimit-Limit"))
	}
	w := serve(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, 1, rl.Stats()["active_clients"])
}

func TestFieldErrors(t *testing.T) {
	require.NoError(t, SetupValidator())

	type body struct {
		SKU      string `json:"sku" binding:"sku"`
		PackSize string `json:"pack_size" binding:"packsize"`
	}
	r := gin.New()
	r.POST("/lots", func(c *gin.Context) {
		var b body
		err := c.ShouldBindJSON(&b)
		fields, ok := FieldErrors(err)
		require.True(t, ok)
		c.JSON(http.StatusUnprocessableEntity, fields)
	})

	req := httptest.NewRequest(http.MethodPost, "/lots", strings.NewReader(`{"sku":" AMX","pack_size":"10x0"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"field":"sku"`)
	assert.Contains(t, w.Body.String(), `"field":"pack_size"`)

	_, ok := FieldErrors(assert.AnError)
	assert.False(t, ok)
}
