package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewMemoryLimiter creates an in-process limiter. Limits are per instance.
func NewMemoryLimiter(rate limiter.Rate) *limiter.Limiter {
	return limiter.New(memory.NewStore(), rate)
}

// RateLimit throttles callers by client IP and reports the window through
// X-RateLimit-* headers. Exhausted callers get 429 with Retry-After.
func RateLimit(lim *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		logger := GetLoggerFromCtx(c.Request.Context())

		window, err := lim.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("Rate limit store lookup failed", slog.String("ip", ip), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error during rate limit check"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(window.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(window.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(window.Reset, 10))

		if window.Reached {
			wait := time.Until(time.Unix(window.Reset, 0))
			if wait < time.Second {
				wait = time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())))
			logger.Warn("Rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", window.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}

		c.Next()
	}
}
