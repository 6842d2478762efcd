package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

// AnalyticsRepository runs one aggregate query per collection.
type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) UserCounts(ctx context.Context) (models.UserCounts, error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM users`
	var counts models.UserCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return models.UserCounts{}, fmt.Errorf("count users: %w", err)
	}
	return counts, nil
}

func (r *AnalyticsRepository) UploadCounts(ctx context.Context) (models.UploadCounts, error) {
	const query = `SELECT COUNT(*) AS total,
		COUNT(*) FILTER (WHERE file_type = 'image') AS images,
		COUNT(*) FILTER (WHERE file_type = 'video') AS videos
		FROM compliance_uploads`
	var counts models.UploadCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return models.UploadCounts{}, fmt.Errorf("count uploads: %w", err)
	}
	return counts, nil
}

func (r *AnalyticsRepository) QuizCounts(ctx context.Context) (models.QuizCounts, error) {
	const query = `SELECT COUNT(*) AS total_attempts,
		COUNT(*) FILTER (WHERE passed) AS passed_attempts
		FROM quiz_attempts`
	var counts models.QuizCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return models.QuizCounts{}, fmt.Errorf("count quiz attempts: %w", err)
	}
	return counts, nil
}

// Ping verifies the database is reachable.
func (r *AnalyticsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
