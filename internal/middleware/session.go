package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

const (
	// ContextUserKey is the gin context key storing the resolved account.
	ContextUserKey = "currentUser"
	// ContextTokenKey stores the raw session token presented with the request.
	ContextTokenKey   = "sessionToken"
	contextSessionErr = "sessionError"
)

// DefaultSessionCookie is the cookie checked when no name is configured.
const DefaultSessionCookie = "session_token"

// SessionResolver maps a session token to an account.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Account, error)
}

// ExtractToken prefers "Authorization: Bearer <token>" and falls back to the session cookie.
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// Session resolves the presented token on every request. It never blocks; the
// gates below decide. A store failure is kept on the context for RequireAuth.
func Session(resolver SessionResolver, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := ExtractToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}
		c.Set(ContextTokenKey, token)

		account, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Warn("session lookup failed", zap.Error(err))
			c.Set(contextSessionErr, err)
			c.Next()
			return
		}
		if account != nil {
			c.Set(ContextUserKey, account)
		}
		c.Next()
	}
}

// CurrentAccount returns the account resolved for the request, if any.
func CurrentAccount(c *gin.Context) *models.Account {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	account, _ := value.(*models.Account)
	return account
}

// SessionToken returns the raw token presented with the request.
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

func sessionError(c *gin.Context) error {
	value, ok := c.Get(contextSessionErr)
	if !ok {
		return nil
	}
	err, _ := value.(error)
	return err
}
