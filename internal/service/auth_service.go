package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/internal/repository"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/identity"
)

type identityProvider interface {
	SessionData(ctx context.Context, sessionID string) (*identity.Profile, error)
}

type authAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	UpdateRole(ctx context.Context, id string, version int, role models.AccountRole) (*models.Account, error)
}

type authSessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Revoke(ctx context.Context, token string, at time.Time) (bool, error)
}

// AuthConfig defines configuration for the identity exchange flow.
type AuthConfig struct {
	PortalURL    string
	PublicAppURL string
	SessionTTL   time.Duration
	AdminEmails  []string
}

// AuthService exchanges external identities for local sessions.
type AuthService struct {
	identity identityProvider
	accounts authAccountRepository
	sessions authSessionRepository
	audit    auditTrail
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	config   AuthConfig
	admins   map[string]struct{}
	now      func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(idp identityProvider, accounts authAccountRepository, sessions authSessionRepository, audit AuditRecorder, cache *CacheService, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 7 * 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(config.AdminEmails))
	for _, email := range config.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &AuthService{
		identity: idp,
		accounts: accounts,
		sessions: sessions,
		audit:    auditTrail{repo: audit, logger: logger},
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		admins:   admins,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LoginURL builds the portal address that redirects back to the profile page.
func (s *AuthService) LoginURL() string {
	return s.config.PortalURL + "/?redirect=" + s.config.PublicAppURL + "/profile"
}

// Exchange trades an external session id for an account and a fresh session token.
func (s *AuthService) Exchange(ctx context.Context, externalSessionID string, meta models.SessionMeta) (*dto.ExchangeResponse, error) {
	externalSessionID = strings.TrimSpace(externalSessionID)
	if externalSessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id required")
	}

	profile, err := s.identity.SessionData(ctx, externalSessionID)
	if err != nil {
		if errors.Is(err, identity.ErrRejected) {
			s.metrics.RecordIdentityExchange("rejected")
			return nil, appErrors.Clone(appErrors.ErrInvalidSession, "invalid session")
		}
		s.metrics.RecordIdentityExchange("unavailable")
		s.logger.Warn("identity provider unavailable", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	s.metrics.RecordIdentityExchange("ok")

	account, err := s.findOrCreate(ctx, profile, meta)
	if err != nil {
		return nil, err
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}
	now := s.now()
	session := &models.Session{
		UserID:       account.ID,
		SessionToken: token,
		ExpiresAt:    now.Add(s.config.SessionTTL),
		CreatedAt:    now,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	s.audit.record(ctx, &models.AuditLog{
		UserID:     &account.ID,
		Action:     models.AuditActionLogin,
		Resource:   models.AuditResourceSession,
		ResourceID: &session.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, map[string]string{"status": "success"})

	return &dto.ExchangeResponse{User: account, SessionToken: token, ExpiresAt: session.ExpiresAt}, nil
}

// Logout revokes the presented session. Unknown tokens and store failures are not surfaced.
func (s *AuthService) Logout(ctx context.Context, token string, actor *models.Account, meta models.SessionMeta) {
	if token == "" {
		return
	}
	revoked, err := s.sessions.Revoke(ctx, token, s.now())
	if err != nil {
		s.logger.Warn("failed to revoke session", zap.Error(err))
		return
	}
	if !revoked {
		return
	}

	entry := &models.AuditLog{
		Action:    models.AuditActionLogout,
		Resource:  models.AuditResourceSession,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if actor != nil {
		entry.UserID = &actor.ID
	}
	s.audit.record(ctx, entry, map[string]string{"status": "logout"})
}

// IsAdminEmail reports whether email is configured as an administrator.
func (s *AuthService) IsAdminEmail(email string) bool {
	_, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (s *AuthService) findOrCreate(ctx context.Context, profile *identity.Profile, meta models.SessionMeta) (*models.Account, error) {
	account, err := s.accounts.FindByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		return s.promoteIfAdmin(ctx, account), nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	role := models.RoleOperator
	if s.IsAdminEmail(profile.Email) {
		role = models.RoleAdmin
	}
	account = &models.Account{
		Name:           profile.Name,
		Email:          profile.Email,
		RestaurantName: models.PlaceholderRestaurantName,
		Role:           role,
		Status:         models.StatusPending,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}
	s.cache.InvalidateAnalytics(ctx)

	s.audit.record(ctx, &models.AuditLog{
		UserID:     &account.ID,
		Action:     models.AuditActionAccountApply,
		Resource:   models.AuditResourceAccount,
		ResourceID: &account.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}, map[string]interface{}{"email": account.Email, "role": account.Role, "status": account.Status})

	return account, nil
}

// promoteIfAdmin upgrades a listed administrator that was stored as an operator.
func (s *AuthService) promoteIfAdmin(ctx context.Context, account *models.Account) *models.Account {
	if account.Role == models.RoleAdmin || !s.IsAdminEmail(account.Email) {
		return account
	}
	promoted, err := s.accounts.UpdateRole(ctx, account.ID, account.Version, models.RoleAdmin)
	if err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			s.logger.Warn("failed to promote administrator", zap.String("account_id", account.ID), zap.Error(err))
		}
		return account
	}
	return promoted
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
