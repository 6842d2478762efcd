package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

const uploadColumns = `id, user_id, filename, file_path, file_type, content_type, size_bytes, description, uploaded_at`

// ComplianceRepository manages compliance upload metadata.
type ComplianceRepository struct {
	db *sqlx.DB
}

func NewComplianceRepository(db *sqlx.DB) *ComplianceRepository {
	return &ComplianceRepository{db: db}
}

// Create inserts upload metadata.
func (r *ComplianceRepository) Create(ctx context.Context, upload *models.ComplianceUpload) error {
	if upload.ID == "" {
		upload.ID = uuid.NewString()
	}
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO compliance_uploads (` + uploadColumns + `) VALUES (:id, :user_id, :filename, :file_path, :file_type, :content_type, :size_bytes, :description, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, upload); err != nil {
		return fmt.Errorf("create compliance upload: %w", err)
	}
	return nil
}

// FindByID fetches upload metadata by id. Ids that are not UUIDs match no row.
func (r *ComplianceRepository) FindByID(ctx context.Context, id string) (*models.ComplianceUpload, error) {
	key, ok := rowKey(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + uploadColumns + ` FROM compliance_uploads WHERE id = $1 LIMIT 1`
	var upload models.ComplianceUpload
	if err := r.db.GetContext(ctx, &upload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find compliance upload: %w", err)
	}
	return &upload, nil
}

// ListByUser returns the uploads of one account, newest first.
func (r *ComplianceRepository) ListByUser(ctx context.Context, userID string) ([]models.ComplianceUpload, error) {
	const query = `SELECT ` + uploadColumns + ` FROM compliance_uploads WHERE user_id = $1 ORDER BY uploaded_at DESC`
	uploads := make([]models.ComplianceUpload, 0)
	if err := r.db.SelectContext(ctx, &uploads, query, userID); err != nil {
		return nil, fmt.Errorf("list compliance uploads: %w", err)
	}
	return uploads, nil
}
