package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter builds an in-process limiter from a formatted rate such as "100-M".
func NewRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// RateLimit throttles requests per client IP.
func RateLimit(lim *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		logger := GetLoggerFromCtx(c.Request.Context())

		quota, err := lim.Get(c.Request.Context(), ip)
		if err != nil {
			logger.Error("Rate limit store failed", slog.String("ip", ip), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "kind": "INTERNAL"})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(quota.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(quota.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(quota.Reset, 10))

		if quota.Reached {
			logger.Warn("Rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", quota.Limit))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later", "kind": "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}
