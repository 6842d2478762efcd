package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/internal/repository"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/export"
)

type accountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	UpdateProfile(ctx context.Context, id string, version int, patch models.ProfilePatch) (*models.Account, error)
	UpdateStatus(ctx context.Context, id string, version int, change models.StatusChange) (*models.Account, error)
}

// ExportFile is a rendered roster ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AccountService manages profile edits and the administrative review lifecycle.
type AccountService struct {
	repo      accountRepository
	audit     auditTrail
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo accountRepository, audit AuditRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{
		repo:      repo,
		audit:     auditTrail{repo: audit, logger: logger},
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UpdateProfile applies the allow-listed fields of req to the caller's own account.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *models.Account, req dto.UpdateProfileRequest, meta models.SessionMeta) (*models.Account, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	submitted := map[models.ProfileField]*string{
		models.ProfileFieldName:           req.Name,
		models.ProfileFieldRestaurantName: req.RestaurantName,
	}
	patch := models.ProfilePatch{}
	for _, field := range models.ProfileFields {
		value := submitted[field]
		if value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must not be blank", field))
		}
		patch[field] = trimmed
	}
	if len(patch) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no updatable fields provided")
	}

	updated, err := s.repo.UpdateProfile(ctx, actor.ID, actor.Version, patch)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "account was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.audit.record(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     models.AuditActionProfileEdit,
		Resource:   models.AuditResourceAccount,
		ResourceID: &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, patch)

	return updated, nil
}

// ListAccounts returns every account, newest first.
func (s *AccountService) ListAccounts(ctx context.Context, actor *models.Account) ([]models.Account, error) {
	if !actor.Can(models.CapabilityManageAccounts) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}
	return accounts, nil
}

// TransitionStatus moves a pending account to approved or rejected. Approval stamps the reviewer.
func (s *AccountService) TransitionStatus(ctx context.Context, actor *models.Account, id string, req dto.UpdateStatusRequest, meta models.SessionMeta) (*models.Account, error) {
	if !actor.Can(models.CapabilityManageAccounts) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be approved or rejected")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if current.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("invalid status transition: account is already %s", current.Status))
	}

	change := models.StatusChange{Status: req.Status}
	if req.Status == models.StatusApproved {
		approvedAt := s.now()
		change.ApprovedAt = &approvedAt
		change.ApprovedBy = &actor.ID
	}

	updated, err := s.repo.UpdateStatus(ctx, current.ID, current.Version, change)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "account was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	s.cache.InvalidateAnalytics(ctx)

	s.audit.record(ctx, &models.AuditLog{
		UserID:     &actor.ID,
		Action:     models.AuditActionStatusChange,
		Resource:   models.AuditResourceAccount,
		ResourceID: &updated.ID,
		OldValues:  []byte(fmt.Sprintf(`{"status":%q}`, current.Status)),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, map[string]interface{}{"status": updated.Status})

	return updated, nil
}

var rosterHeaders = []string{"id", "name", "email", "restaurant_name", "role", "status", "approved_at", "created_at"}

// ExportAccounts renders the account roster as CSV or PDF.
func (s *AccountService) ExportAccounts(ctx context.Context, actor *models.Account, format string) (*ExportFile, error) {
	if !actor.Can(models.CapabilityManageAccounts) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	parsed, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}

	rows := make([]map[string]string, 0, len(accounts))
	for _, account := range accounts {
		approvedAt := ""
		if account.ApprovedAt != nil {
			approvedAt = account.ApprovedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, map[string]string{
			"id":              account.ID,
			"name":            account.Name,
			"email":           account.Email,
			"restaurant_name": account.RestaurantName,
			"role":            string(account.Role),
			"status":          string(account.Status),
			"approved_at":     approvedAt,
			"created_at":      account.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	renderer := export.For(parsed)
	data, err := renderer.Render(export.Dataset{Title: "MeatSafe accounts", Headers: rosterHeaders, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("accounts-%s%s", s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}
