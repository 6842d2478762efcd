package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/meatsafe-api/internal/models"
	appErrors "github.com/noah-isme/meatsafe-api/pkg/errors"
	"github.com/noah-isme/meatsafe-api/pkg/response"
)

// RequireAuth rejects requests without a resolved account.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticated(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireApproved admits only approved accounts.
func RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := authenticated(c)
		if !ok {
			return
		}
		if !account.IsApproved() {
			response.Error(c, appErrors.ErrPendingApproval)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireCapability admits accounts whose role grants capability.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := authenticated(c)
		if !ok {
			return
		}
		if !account.Can(capability) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticated writes the failure response and aborts when no account is present.
func authenticated(c *gin.Context) (*models.Account, bool) {
	if err := sessionError(c); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve session"))
		c.Abort()
		return nil, false
	}
	account := CurrentAccount(c)
	if account == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil, false
	}
	return account, true
}
