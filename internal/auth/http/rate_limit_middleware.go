package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = time.Hour
)

// limiterStore keeps one token bucket per client IP.
type limiterStore struct {
	limiters sync.Map // string -> *limiterEntry
	rps      float64
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

// SignInRateLimitMiddleware limits unauthenticated credential endpoints (sign-in, sign-up,
// password reset) per client IP. Idle limiters are dropped until ctx is done.
//
// c.ClientIP() honours X-Forwarded-For and X-Real-IP from trusted proxies.
func SignInRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &limiterStore{rps: rps, burst: burst}
	go store.cleanupStale(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.get(clientIP)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Debug("sign-in rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many attempts from this address, retry after the given delay",
			})
			return
		}

		c.Next()
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	now := time.Now()
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst), lastAccess: now}
	actual, _ := s.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupStale drops limiters idle for longer than limiterIdleTimeout.
func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-limiterIdleTimeout))
		}
	}
}

func (s *limiterStore) evictIdle(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		idle := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if idle {
			s.limiters.Delete(key)
		}
		return true
	})
}
