package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/retail/storefront/internal/domain/shared"
	"github.com/retail/storefront/internal/infrastructure/cache"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuthRateLimitMessage is the body of a throttled sign-in attempt
const AuthRateLimitMessage = "Too many sign-in attempts. Please wait a minute and try again."

// AuthRateLimit counts sign-in and registration posts per client IP and
// answers 429 once the window's allowance is spent. Other methods pass
// through so the forms still render. A limiter failure lets the post
// through.
func AuthRateLimit(limiter shared.AttemptLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ip := c.ClientIP()
		attempt, err := limiter.Hit(c.Request.Context(), cache.AuthAttemptKey(ip))
		if err != nil {
			logger.GetGinLogger(c).Warn("Auth rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(attempt.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(attempt.Remaining))
		if !attempt.Allowed {
			logger.GetGinLogger(c).Warn("Auth attempt throttled", zap.String("client_ip", ip))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(attempt.RetryAfter.Seconds()))))
			c.String(http.StatusTooManyRequests, AuthRateLimitMessage)
			c.Abort()
			return
		}
		c.Next()
	}
}
