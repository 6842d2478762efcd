package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
)

// PassThresholdPercent is the minimum score percentage that passes.
const PassThresholdPercent = 70

type quizRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	ListByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error)
}

// Score grades answers against bank. Each question counts at most once, using
// the first answer that names it; answers with missing fields or unknown ids are ignored.
func Score(bank []models.QuizQuestion, answers []models.QuizAnswer) (score, total int, passed bool) {
	total = len(bank)
	key := make(map[int]int, total)
	for _, q := range bank {
		key[q.ID] = q.CorrectAnswer
	}

	seen := make(map[int]struct{}, len(answers))
	for _, answer := range answers {
		if answer.QuestionID == nil || answer.SelectedAnswer == nil {
			continue
		}
		id := *answer.QuestionID
		correct, ok := key[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if *answer.SelectedAnswer == correct {
			score++
		}
	}

	passed = total > 0 && score*100 >= total*PassThresholdPercent
	return score, total, passed
}

// QuizService serves the question bank and records scored attempts.
type QuizService struct {
	bank      []models.QuizQuestion
	repo      quizRepository
	audit     auditTrail
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuizService constructs a QuizService. A nil bank selects DefaultQuestionBank.
func NewQuizService(bank []models.QuizQuestion, repo quizRepository, audit AuditRecorder, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if bank == nil {
		bank = DefaultQuestionBank
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &QuizService{
		bank:      bank,
		repo:      repo,
		audit:     auditTrail{repo: audit, logger: logger},
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Questions returns the bank without answer keys.
func (s *QuizService) Questions(actor *models.Account) ([]dto.QuizQuestionView, error) {
	if err := requireApproved(actor); err != nil {
		return nil, err
	}
	views := make([]dto.QuizQuestionView, 0, len(s.bank))
	for _, q := range s.bank {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		views = append(views, dto.QuizQuestionView{ID: q.ID, Question: q.Question, Options: options})
	}
	return views, nil
}

// AnswerKey returns the full bank including correct answers.
func (s *QuizService) AnswerKey(actor *models.Account) ([]models.QuizQuestion, error) {
	if !actor.Can(models.CapabilityViewQuizAnswers) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	key := make([]models.QuizQuestion, len(s.bank))
	copy(key, s.bank)
	return key, nil
}

// Submit scores and stores one attempt for the caller.
func (s *QuizService) Submit(ctx context.Context, actor *models.Account, req dto.SubmitQuizRequest, meta models.SessionMeta) (*models.QuizAttempt, error) {
	if err := requireApproved(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "answers are required")
	}

	raw, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid answers")
	}

	score, total, passed := Score(s.bank, req.Answers)
	attempt := &models.QuizAttempt{
		UserID:         actor.ID,
		Score:          score,
		TotalQuestions: total,
		Passed:         passed,
		Answers:        raw,
		CompletedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, attempt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record quiz attempt")
	}

	s.metrics.RecordQuizSubmission(passed)
	s.cache.InvalidateAnalytics(ctx)
	s.audit.record(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     models.AuditActionQuizSubmit,
		Resource:   models.AuditResourceQuiz,
		ResourceID: &attempt.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, map[string]interface{}{"score": score, "total_questions": total, "passed": passed})

	return attempt, nil
}

// Attempts lists the caller's attempts, newest first.
func (s *QuizService) Attempts(ctx context.Context, actor *models.Account) ([]models.QuizAttempt, error) {
	if err := requireApproved(actor); err != nil {
		return nil, err
	}
	attempts, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list quiz attempts")
	}
	return attempts, nil
}
