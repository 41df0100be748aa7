package middleware

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/infrastructure/ratelimit"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

// RateLimit throttles requests per client IP.
func RateLimit(limiter *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !limiter.Allow(ip) {
				logger.Warn("Rate limit exceeded for %s on %s", ip, c.Path())
				return errors.TooManyRequests("Rate limit exceeded, try again later")
			}
			return next(c)
		}
	}
}
