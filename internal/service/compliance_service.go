package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/storage"
)

// DefaultMaxUploadBytes caps a single evidence file.
const DefaultMaxUploadBytes int64 = 100 << 20

type uploadType struct {
	kind        models.UploadKind
	contentType string
}

// allowedUploads is the extension allow-list, keyed by lower-case extension.
var allowedUploads = map[string]uploadType{
	".jpg":  {models.UploadKindImage, "image/jpeg"},
	".jpeg": {models.UploadKindImage, "image/jpeg"},
	".png":  {models.UploadKindImage, "image/png"},
	".gif":  {models.UploadKindImage, "image/gif"},
	".mp4":  {models.UploadKindVideo, "video/mp4"},
	".mov":  {models.UploadKindVideo, "video/quicktime"},
	".avi":  {models.UploadKindVideo, "video/x-msvideo"},
	".wmv":  {models.UploadKindVideo, "video/x-ms-wmv"},
}

// ClassifyUpload returns the normalised extension and kind for filename.
func ClassifyUpload(filename string) (string, models.UploadKind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	t, ok := allowedUploads[ext]
	if !ok {
		return "", "", false
	}
	return ext, t.kind, true
}

type complianceRepository interface {
	Create(ctx context.Context, upload *models.ComplianceUpload) error
	FindByID(ctx context.Context, id string) (*models.ComplianceUpload, error)
	ListByUser(ctx context.Context, userID string) ([]models.ComplianceUpload, error)
}

// ComplianceService stores evidence blobs and their metadata.
type ComplianceService struct {
	repo     complianceRepository
	blobs    storage.BlobStore
	audit    auditTrail
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	maxBytes int64
	newKey   func(ext string) string
	now      func() time.Time
}

// NewComplianceService constructs a ComplianceService. maxBytes <= 0 selects the default cap.
func NewComplianceService(repo complianceRepository, blobs storage.BlobStore, audit AuditRecorder, cache *CacheService, metrics *MetricsService, logger *zap.Logger, maxBytes int64) *ComplianceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ComplianceService{
		repo:     repo,
		blobs:    blobs,
		audit:    auditTrail{repo: audit, logger: logger},
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		maxBytes: maxBytes,
		newKey:   func(ext string) string { return uuid.NewString() + ext },
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates and stores one file for an approved account.
func (s *ComplianceService) Upload(ctx context.Context, actor *models.Account, req dto.UploadRequest, meta models.SessionMeta) (*models.ComplianceUpload, error) {
	if err := requireApproved(actor); err != nil {
		return nil, err
	}
	ext, kind, ok := ClassifyUpload(req.Filename)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrFileTypeNotAllowed, "file type not allowed")
	}
	if req.Body == nil || req.Size == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if req.Size > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	key := s.newKey(ext)
	contentType := allowedUploads[ext].contentType
	counter := &countingReader{r: io.LimitReader(req.Body, s.maxBytes+1)}
	if err := s.blobs.Put(ctx, key, counter, req.Size, contentType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	if counter.n == 0 || counter.n > s.maxBytes {
		s.discard(ctx, key)
		if counter.n == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	upload := &models.ComplianceUpload{
		UserID:      actor.ID,
		Filename:    filepath.Base(req.Filename),
		FilePath:    key,
		FileType:    kind,
		ContentType: contentType,
		SizeBytes:   counter.n,
		UploadedAt:  s.now(),
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		upload.Description = &desc
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		s.discard(ctx, key)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record upload")
	}

	s.metrics.RecordUpload(kind)
	s.cache.InvalidateAnalytics(ctx)
	s.audit.record(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     models.AuditActionUpload,
		Resource:   models.AuditResourceUpload,
		ResourceID: &upload.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, map[string]interface{}{"filename": upload.Filename, "file_type": kind, "size_bytes": upload.SizeBytes})

	return upload, nil
}

// List returns the caller's own uploads.
func (s *ComplianceService) List(ctx context.Context, actor *models.Account) ([]models.ComplianceUpload, error) {
	if err := requireApproved(actor); err != nil {
		return nil, err
	}
	uploads, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uploads")
	}
	return uploads, nil
}

// Open returns metadata and a content stream. The caller must close the stream.
func (s *ComplianceService) Open(ctx context.Context, actor *models.Account, id string) (*models.ComplianceUpload, io.ReadCloser, error) {
	if actor == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	if upload.UserID != actor.ID && !actor.Can(models.CapabilityReadAnyUpload) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "access denied")
	}

	body, err := s.blobs.Open(ctx, upload.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "file not found on disk")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return upload, body, nil
}

func (s *ComplianceService) discard(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete orphaned blob", zap.String("key", key), zap.Error(err))
	}
}

func requireApproved(actor *models.Account) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !actor.IsApproved() {
		return appErrors.Clone(appErrors.ErrPendingApproval, "account pending approval")
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
