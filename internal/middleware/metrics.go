package middleware

import (
	"strconv"
	"time"

	"github.com/anonto42/aray/backend/internal/observability"
	"github.com/labstack/echo/v4"
)

// Metrics records request counts and latency per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// commit the error response so the final status is known
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			observability.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
			observability.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
