package dto

import (
	"time"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

// LoginURLResponse points the browser at the external login portal.
type LoginURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// ExchangeResponse is returned after a successful identity exchange.
type ExchangeResponse struct {
	User         *models.Account `json:"user"`
	SessionToken string          `json:"session_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// MessageResponse carries a human readable acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
