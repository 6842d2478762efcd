package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template so path ids do not
// explode label cardinality. Routes listed in skip (e.g. the scrape endpoint)
// are not recorded.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, route := range skip {
		skipped[route] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := skipped[route]; ok && route != "" {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
