package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/middleware"
	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
)

type fakeAuthService struct {
	exchangeID  string
	exchangeErr error
	loggedOut   []string
	logoutActor *models.Account
}

func (f *fakeAuthService) LoginURL() string { return "https://auth.example.com/?redirect=x" }

func (f *fakeAuthService) Exchange(ctx context.Context, id string, meta models.SessionMeta) (*dto.ExchangeResponse, error) {
	f.exchangeID = id
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &dto.ExchangeResponse{User: operator(), SessionToken: "tok-123", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, token string, actor *models.Account, meta models.SessionMeta) {
	f.loggedOut = append(f.loggedOut, token)
	f.logoutActor = actor
}

func TestAuthHandlerLogin(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})
	c, rec := newTestContext(http.MethodGet, "/auth/login", nil, nil)

	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"auth_url":"https://auth.example.com/?redirect=x"`)
}

func TestAuthHandlerProfileSetsCookie(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{Name: "session_token", Secure: true, TTL: 7 * 24 * time.Hour})
	c, rec := newTestContext(http.MethodPost, "/auth/profile", nil, nil)
	c.Request.Header.Set("X-Session-ID", "ext-42")

	h.Profile(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ext-42", svc.exchangeID)
	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "session_token=tok-123")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "Secure")
	assert.Contains(t, cookie, "Max-Age=604800")
	assert.Contains(t, cookie, "SameSite=None")
	assert.Contains(t, rec.Body.String(), `"session_token":"tok-123"`)
}

func TestAuthHandlerProfileErrors(t *testing.T) {
	h := NewAuthHandler(&fakeAuthService{exchangeErr: appErrors.Clone(appErrors.ErrInvalidSession, "invalid session")}, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/auth/profile", nil, nil)
	c.Request.Header.Set("X-Session-ID", "bad")

	h.Profile(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_SESSION", env.Error.Code)
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{Name: "session_token"})
	c, rec := newTestContext(http.MethodPost, "/auth/logout", nil, operator())
	c.Set(middleware.ContextTokenKey, "tok-123")

	h.Logout(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tok-123"}, svc.loggedOut)
	assert.Equal(t, "op-1", svc.logoutActor.ID)
	assert.Contains(t, rec.Body.String(), "Logged out successfully")
	cookie := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, "session_token=;"), cookie)
	assert.Contains(t, cookie, "Max-Age=0")
}

func TestAuthHandlerLogoutWithoutSession(t *testing.T) {
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{})
	c, rec := newTestContext(http.MethodPost, "/auth/logout", nil, nil)

	h.Logout(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{""}, svc.loggedOut)
}
