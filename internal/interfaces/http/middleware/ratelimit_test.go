package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to burst then rejects", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 3, time.Minute)

		assert.True(t, rl.Allow("k"))
		assert.True(t, rl.Allow("k"))
		assert.True(t, rl.Allow("k"))
		assert.False(t, rl.Allow("k"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 1, time.Minute)

		assert.True(t, rl.Allow("a"))
		assert.False(t, rl.Allow("a"))
		assert.True(t, rl.Allow("b"))
	})

	t.Run("remaining reflects consumption", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 5, time.Minute)

		assert.Equal(t, 5, rl.Remaining("k"))
		rl.Allow("k")
		rl.Allow("k")
		assert.Equal(t, 3, rl.Remaining("k"))
	})

	t.Run("concurrent first requests share one bucket", func(t *testing.T) {
		rl := NewRateLimiter(0.001, 10, time.Minute)

		var allowed atomic.Int32
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if rl.Allow("shared") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(10), allowed.Load())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, time.Minute)

	router := gin.New()
	router.Use(RequestID())
	router.Use(TenantMiddlewareWithConfig(TenantMiddlewareConfig{}))
	router.Use(RateLimit(rl))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	send := func(tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if tenant != "" {
			req.Header.Set(TenantHeaderKey, tenant)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	tenantA := uuid.NewString()
	w := send(tenantA)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send(tenantA).Code)

	w = send(tenantA)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")

	// Another tenant has its own bucket
	assert.Equal(t, http.StatusOK, send(uuid.NewString()).Code)

	// Requests without a tenant are keyed by IP
	assert.Equal(t, http.StatusOK, send("").Code)
}
