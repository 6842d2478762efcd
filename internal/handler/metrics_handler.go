package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/service"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      Pinger
	cache   Pinger
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, db Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db}
}

// WithCache adds a cache probe to readiness. Cache failures never fail readiness.
func (h *MetricsHandler) WithCache(cache Pinger) *MetricsHandler {
	h.cache = cache
	return h
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready verifies the database answers within two seconds and reports cache reachability.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			response.Error(c, appErrors.Wrap(err, "NOT_READY", http.StatusServiceUnavailable, "database unavailable"))
			return
		}
	}

	cache := "disabled"
	if h.cache != nil {
		cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			cache = "unavailable"
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "cache": cache})
}
