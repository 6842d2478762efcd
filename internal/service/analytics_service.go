package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
)

// AnalyticsRepository describes the aggregate queries required by AnalyticsService.
type AnalyticsRepository interface {
	UserCounts(ctx context.Context) (models.UserCounts, error)
	UploadCounts(ctx context.Context) (models.UploadCounts, error)
	QuizCounts(ctx context.Context) (models.QuizCounts, error)
}

// AnalyticsService computes dashboard counts with cache integration.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// Summary returns current counts. The boolean indicates whether data originated from cache.
func (s *AnalyticsService) Summary(ctx context.Context, actor *models.Account) (*models.AnalyticsSummary, bool, error) {
	if !actor.Can(models.CapabilityViewAnalytics) {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}

	var cached models.AnalyticsSummary
	if s.cache.Get(ctx, analyticsCacheKey, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	users, err := s.repo.UserCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	uploads, err := s.repo.UploadCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count uploads")
	}
	quiz, err := s.repo.QuizCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count quiz attempts")
	}
	s.metrics.ObserveDBQuery("analytics_summary", time.Since(start))

	quiz.PassRate = PassRate(quiz.PassedAttempts, quiz.TotalAttempts)
	summary := &models.AnalyticsSummary{Users: users, Uploads: uploads, Quiz: quiz}
	s.cache.Set(ctx, analyticsCacheKey, summary, 0)
	return summary, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics(actor *models.Account) (models.AnalyticsSystemMetrics, error) {
	if !actor.Can(models.CapabilityViewAnalytics) {
		return models.AnalyticsSystemMetrics{}, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	return s.metrics.Snapshot(), nil
}

// PassRate is passed/total as an unrounded percentage; 0 when total is 0.
func PassRate(passed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(passed) / float64(total) * 100
}
