package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "approved", "rejected"}).AddRow(5, 2, 2, 1))
	mock.ExpectQuery("FROM compliance_uploads").WillReturnRows(sqlmock.NewRows([]string{"total", "images", "videos"}).AddRow(3, 2, 1))
	mock.ExpectQuery("FROM quiz_attempts").WillReturnRows(sqlmock.NewRows([]string{"total_attempts", "passed_attempts"}).AddRow(4, 3))

	users, err := repo.UserCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, users.Total)
	assert.Equal(t, 1, users.Rejected)

	uploads, err := repo.UploadCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, uploads.Images)

	quiz, err := repo.QuizCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, quiz.PassedAttempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsCountsError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM users").WillReturnError(errors.New("connection reset"))

	_, err := NewAnalyticsRepository(db).UserCounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count users")
}
