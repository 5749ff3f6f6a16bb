package middleware

import (
	"net/http"
	"strconv"

	"asset-relay/internal/redis"
	"asset-relay/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// IngestRateLimitMiddleware limits ingestion requests per client IP.
// A nil limiter (no Redis configured) disables the check.
func IngestRateLimitMiddleware(limiter *redis.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		result, err := limiter.AllowIngest(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Rate limiting is advisory; a broken Redis must not take
			// ingestion down with it.
			c.Next()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("Rate limit exceeded"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
