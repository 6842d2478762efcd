package dto

import "github.com/noah-isme/meatsafe-api/internal/models"

// QuizQuestionView is a question without its answer key.
type QuizQuestionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// SubmitQuizRequest is the body of a quiz submission. An empty list is valid.
type SubmitQuizRequest struct {
	Answers []models.QuizAnswer `json:"answers" validate:"required"`
}
