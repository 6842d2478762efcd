package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

func TestQuizCreateDefaultsAnswers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectExec("INSERT INTO quiz_attempts").WillReturnResult(sqlmock.NewResult(1, 1))

	attempt := &models.QuizAttempt{UserID: "u1", Score: 1, TotalQuestions: 8}
	require.NoError(t, repo.Create(context.Background(), attempt))
	assert.Equal(t, "[]", attempt.Answers.String())
	assert.NotEmpty(t, attempt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "score", "total_questions", "passed", "answers", "completed_at"}).
		AddRow("q1", "u1", 6, 8, true, []byte(`[{"question_id":3,"selected_answer":1}]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM quiz_attempts WHERE user_id = $1 ORDER BY completed_at DESC")).WithArgs("u1").WillReturnRows(rows)

	attempts, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Passed)

	var answers []models.QuizAnswer
	require.NoError(t, attempts[0].Answers.Unmarshal(&answers))
	require.Len(t, answers, 1)
	assert.Equal(t, 3, *answers[0].QuestionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
