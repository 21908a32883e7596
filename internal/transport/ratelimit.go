package transport

import (
	"github.com/candemiralp/leadflow/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RateLimitMiddleware rejects requests over the per-client budget with 429.
// Clients are keyed by IP. A limiter backend failure admits the request.
func RateLimitMiddleware(limiter ratelimit.RateLimiter, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		allowed, err := limiter.Allow(c.Context(), c.IP())
		if err != nil {
			logger.Warn("rate limiter unavailable, admitting request",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Next()
		}
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}

		return c.Next()
	}
}
