package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/12344321abc/romantic-flowers-app/prometheus"
)

// MetricsMiddleware records request count and duration for every route.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			prometheus.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
			prometheus.HTTPRequestDuration.WithLabelValues(method, path, statusStr).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}
