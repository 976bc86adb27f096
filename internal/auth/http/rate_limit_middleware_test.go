package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := gin.New()
	router.Use(SignInRateLimitMiddleware(ctx, rps, burst, slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.POST("/sign_in", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func postFrom(router *gin.Engine, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sign_in", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestSignInRateLimitMiddleware(t *testing.T) {
	t.Run("Success_WithinBurst", func(t *testing.T) {
		router := rateLimitedRouter(t, 1, 5)
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, postFrom(router, "", "").Code, "request %d", i+1)
		}
	})

	t.Run("Error_ExceedsBurst", func(t *testing.T) {
		router := rateLimitedRouter(t, 0.5, 1)

		assert.Equal(t, http.StatusOK, postFrom(router, "", "").Code)
		w := postFrom(router, "", "")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("Success_IndependentPerIP", func(t *testing.T) {
		router := rateLimitedRouter(t, 1, 1)

		assert.Equal(t, http.StatusOK, postFrom(router, "192.168.1.100:1000", "").Code)
		assert.Equal(t, http.StatusTooManyRequests, postFrom(router, "192.168.1.100:1001", "").Code)
		assert.Equal(t, http.StatusOK, postFrom(router, "192.168.1.101:1000", "").Code)
	})

	t.Run("Success_ForwardedFor", func(t *testing.T) {
		router := rateLimitedRouter(t, 1, 1)

		assert.Equal(t, http.StatusOK, postFrom(router, "", "203.0.113.1").Code)
		assert.Equal(t, http.StatusTooManyRequests, postFrom(router, "", "203.0.113.1").Code)
		assert.Equal(t, http.StatusOK, postFrom(router, "", "203.0.113.2").Code)
	})
}

func TestLimiterStore_EvictIdle(t *testing.T) {
	store := &limiterStore{rps: 10, burst: 20}
	store.get("192.168.1.100")
	store.get("192.168.1.101")

	val, _ := store.limiters.Load("192.168.1.100")
	entry := val.(*limiterEntry)
	entry.mu.Lock()
	entry.lastAccess = time.Now().Add(-2 * time.Hour)
	entry.mu.Unlock()

	store.evictIdle(time.Now().Add(-limiterIdleTimeout))

	_, ok := store.limiters.Load("192.168.1.100")
	assert.False(t, ok)
	_, ok = store.limiters.Load("192.168.1.101")
	assert.True(t, ok)
}
