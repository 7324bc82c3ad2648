package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/metrics"
	"campus_exchange/internal/service"
	"campus_exchange/pkg/logger"
)

type RateLimitMiddleware struct {
	rateLimitService service.RateLimitService
	log              logger.Logger
}

func NewRateLimitMiddleware(rateLimitService service.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		log:              log,
	}
}

// Limit counts requests per authenticated user, or per client IP for
// anonymous requests. A failing counter store lets the request through.
func (m *RateLimitMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := domain.RateLimitKey(domain.RateLimitScopeIP, c.ClientIP())
		if userID := UserID(c); userID != "" {
			key = domain.RateLimitKey(domain.RateLimitScopeUser, userID)
		}

		result, err := m.rateLimitService.Allow(c.Request.Context(), key)
		if err != nil {
			m.log.Error("Rate limit check failed", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			metrics.RateLimitHits.WithLabelValues("rest").Inc()
			c.Header("Retry-After", strconv.Itoa(int(result.Reset.Seconds())+1))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
