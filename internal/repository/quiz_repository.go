package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

// QuizRepository persists quiz attempts. Attempts are never updated.
type QuizRepository struct {
	db *sqlx.DB
}

func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = time.Now().UTC()
	}
	if len(attempt.Answers) == 0 {
		attempt.Answers = []byte("[]")
	}
	const query = `INSERT INTO quiz_attempts (id, user_id, score, total_questions, passed, answers, completed_at) VALUES (:id, :user_id, :score, :total_questions, :passed, :answers, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return fmt.Errorf("create quiz attempt: %w", err)
	}
	return nil
}

func (r *QuizRepository) ListByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	const query = `SELECT id, user_id, score, total_questions, passed, answers, completed_at FROM quiz_attempts WHERE user_id = $1 ORDER BY completed_at DESC`
	attempts := make([]models.QuizAttempt, 0)
	if err := r.db.SelectContext(ctx, &attempts, query, userID); err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	return attempts, nil
}
