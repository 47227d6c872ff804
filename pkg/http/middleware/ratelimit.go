package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Allower grants or denies one request for a key.
type Allower interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// RateLimit applies a per-client token bucket keyed by route and client IP.
func RateLimit(limiter Allower, capacity, refillPerSec float64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Path() + "|" + c.RealIP()
			if limiter.Allow(key, capacity, refillPerSec) {
				return next(c)
			}
			retry := 1
			if refillPerSec > 0 && refillPerSec < 1 {
				retry = int(1/refillPerSec) + 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"status":  http.StatusTooManyRequests,
				"message": http.StatusText(http.StatusTooManyRequests),
			})
		}
	}
}
