package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/dto"
	"github.com/noah-isme/meatsafe-api/internal/middleware"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

type authService interface {
	LoginURL() string
	Exchange(ctx context.Context, externalSessionID string, meta models.SessionMeta) (*dto.ExchangeResponse, error)
	Logout(ctx context.Context, token string, actor *models.Account, meta models.SessionMeta)
}

// CookieConfig describes the session cookie set after a successful exchange.
type CookieConfig struct {
	Name          string
	Secure        bool
	TTL           time.Duration
	SessionHeader string
}

// AuthHandler wires the identity exchange endpoints.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = middleware.DefaultSessionCookie
	}
	if cookie.SessionHeader == "" {
		cookie.SessionHeader = "X-Session-ID"
	}
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Login portal address
// @Description Returns the external portal URL that redirects back to the profile page
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	response.OK(c, dto.LoginURLResponse{AuthURL: h.service.LoginURL()})
}

// Profile godoc
// @Summary Exchange external session
// @Description Trades the portal session id for an account and a session token
// @Tags Authentication
// @Produce json
// @Param X-Session-ID header string true "External session id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/profile [post]
func (h *AuthHandler) Profile(c *gin.Context) {
	res, err := h.service.Exchange(c.Request.Context(), c.GetHeader(h.cookie.SessionHeader), sessionMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setCookie(c, res.SessionToken, int(h.cookie.TTL.Seconds()))
	response.OK(c, res)
}

// Logout godoc
// @Summary Logout current session
// @Description Revokes the presented session token and clears the cookie
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.SessionToken(c)
	if token == "" {
		token = middleware.ExtractToken(c, h.cookie.Name)
	}
	h.service.Logout(c.Request.Context(), token, currentAccount(c), sessionMeta(c))
	h.setCookie(c, "", -1)
	response.OK(c, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
