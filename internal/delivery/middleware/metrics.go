package middleware

import (
	"time"

	"librarian/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts and latency per route template.
type MetricsMiddleware struct {
	metrics service.LedgerMetrics
	skip    map[string]struct{}
}

// NewMetricsMiddleware creates a metrics middleware. Requests to skipPaths
// (the scrape endpoint itself, for example) are not observed.
func NewMetricsMiddleware(metrics service.LedgerMetrics, skipPaths ...string) *MetricsMiddleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return &MetricsMiddleware{metrics: metrics, skip: skip}
}

func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := m.skip[c.Request().URL.Path]; ok {
			return next(c)
		}

		start := time.Now()
		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		m.metrics.ObserveRequest(c.Request().Method, route, responseStatus(c, err), time.Since(start))

		return err
	}
}
