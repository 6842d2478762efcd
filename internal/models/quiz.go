package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// QuizQuestion is one entry of the question bank, including its answer key.
type QuizQuestion struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// QuizAnswer is one submitted choice. Nil fields are ignored when scoring.
type QuizAnswer struct {
	QuestionID     *int `json:"question_id"`
	SelectedAnswer *int `json:"selected_answer"`
}

// QuizAttempt is an immutable scored submission.
type QuizAttempt struct {
	ID             string         `db:"id" json:"id"`
	UserID         string         `db:"user_id" json:"user_id"`
	Score          int            `db:"score" json:"score"`
	TotalQuestions int            `db:"total_questions" json:"total_questions"`
	Passed         bool           `db:"passed" json:"passed"`
	Answers        types.JSONText `db:"answers" json:"answers"`
	CompletedAt    time.Time      `db:"completed_at" json:"completed_at"`
}
