package models

import "time"

// Session maps an opaque bearer token to an account until it expires or is revoked.
type Session struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	SessionToken string     `db:"session_token" json:"-"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	RevokedAt    *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress    string     `db:"ip_address" json:"ip_address"`
	UserAgent    string     `db:"user_agent" json:"user_agent"`
}

// ActiveAt reports whether the session is usable at t. Expiry is exclusive.
func (s *Session) ActiveAt(t time.Time) bool {
	if s == nil || s.RevokedAt != nil {
		return false
	}
	return t.Before(s.ExpiresAt)
}

// SessionMeta carries request details recorded alongside a new session.
type SessionMeta struct {
	IPAddress string
	UserAgent string
}
