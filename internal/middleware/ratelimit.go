package middleware

import (
	"log"
	"strconv"
	"time"

	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimit throttles requests per client IP. When the limiter itself fails
// the request is let through.
func RateLimit(name string, limiter ratelimit.Limiter, m *metrics.Metrics, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("Rate limiter %s unavailable: %v", name, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.RecordRateLimited(name)
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			apierrors.TooManyRequests(c, message)
			return
		}

		c.Next()
	}
}
