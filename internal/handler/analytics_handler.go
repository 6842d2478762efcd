package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/middleware"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

type analyticsService interface {
	Summary(ctx context.Context, actor *models.Account) (*models.AnalyticsSummary, bool, error)
	SystemMetrics(actor *models.Account) (models.AnalyticsSystemMetrics, error)
}

// AnalyticsHandler exposes the admin dashboard counts.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary godoc
// @Summary Dashboard analytics
// @Description Account, upload and quiz counts; meta.cache_hit reports whether the payload came from cache
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, cacheHit, err := h.analytics.Summary(c.Request.Context(), currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// System godoc
// @Summary Process instrumentation snapshot
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	snapshot, err := h.analytics.SystemMetrics(currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, snapshot)
}
