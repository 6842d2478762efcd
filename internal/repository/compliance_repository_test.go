package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

var uploadCols = []string{"id", "user_id", "filename", "file_path", "file_type", "content_type", "size_bytes", "description", "uploaded_at"}

func TestComplianceCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplianceRepository(db)

	mock.ExpectExec("INSERT INTO compliance_uploads").WillReturnResult(sqlmock.NewResult(1, 1))

	upload := &models.ComplianceUpload{UserID: "u1", Filename: "board.png", FilePath: "k.png", FileType: models.UploadKindImage, ContentType: "image/png", SizeBytes: 10}
	require.NoError(t, repo.Create(context.Background(), upload))
	assert.NotEmpty(t, upload.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplianceFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplianceRepository(db)

	const id = "0f8e1c52-3a7b-4e9d-8c21-6d4b2a9e5f30"
	rows := sqlmock.NewRows(uploadCols).AddRow(id, "u1", "board.png", "k.png", "image", "image/png", 10, "prep area", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM compliance_uploads WHERE id = $1 LIMIT 1")).WithArgs(id).WillReturnRows(rows)

	upload, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "board.png", upload.Filename)
	require.NotNil(t, upload.Description)
	assert.Equal(t, "prep area", *upload.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplianceFindByIDMalformedIDIsNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplianceRepository(db)

	_, err := repo.FindByID(context.Background(), "abc")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplianceListByUserIsScoped(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewComplianceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM compliance_uploads WHERE user_id = $1 ORDER BY uploaded_at DESC")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(uploadCols))

	uploads, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, uploads)
	assert.Empty(t, uploads)
	assert.NoError(t, mock.ExpectationsWereMet())
}
