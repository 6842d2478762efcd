package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

type quizService interface {
	Questions(actor *models.Account) ([]dto.QuizQuestionView, error)
	AnswerKey(actor *models.Account) ([]models.QuizQuestion, error)
	Submit(ctx context.Context, actor *models.Account, req dto.SubmitQuizRequest, meta models.SessionMeta) (*models.QuizAttempt, error)
	Attempts(ctx context.Context, actor *models.Account) ([]models.QuizAttempt, error)
}

// QuizHandler exposes the awareness quiz.
type QuizHandler struct {
	service quizService
}

// NewQuizHandler constructs the handler.
func NewQuizHandler(svc quizService) *QuizHandler {
	return &QuizHandler{service: svc}
}

// Questions godoc
// @Summary Quiz questions
// @Description Returns the question bank without correct answers
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /quiz/questions [get]
func (h *QuizHandler) Questions(c *gin.Context) {
	questions, err := h.service.Questions(currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, response.Count(len(questions)))
}

// AnswerKey godoc
// @Summary Quiz answer key
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/quiz/questions [get]
func (h *QuizHandler) AnswerKey(c *gin.Context) {
	questions, err := h.service.AnswerKey(currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, response.Count(len(questions)))
}

// Submit godoc
// @Summary Submit quiz answers
// @Tags Quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitQuizRequest true "Answers"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /quiz/submit [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	var req dto.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload"))
		return
	}
	attempt, err := h.service.Submit(c.Request.Context(), currentAccount(c), req, sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attempt)
}

// Attempts godoc
// @Summary Own quiz attempts
// @Tags Quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /quiz/attempts [get]
func (h *QuizHandler) Attempts(c *gin.Context) {
	attempts, err := h.service.Attempts(c.Request.Context(), currentAccount(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attempts, response.Count(len(attempts)))
}
