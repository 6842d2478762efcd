package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

type sessionLookup interface {
	FindByToken(ctx context.Context, token string) (*models.Session, error)
}

type sessionAccountLookup interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// SessionService resolves bearer tokens into accounts. It never mutates sessions.
type SessionService struct {
	sessions sessionLookup
	accounts sessionAccountLookup
	now      func() time.Time
}

func NewSessionService(sessions sessionLookup, accounts sessionAccountLookup) *SessionService {
	return &SessionService{sessions: sessions, accounts: accounts, now: func() time.Time { return time.Now().UTC() }}
}

// Resolve returns the account for token, or nil when the token is empty, unknown,
// revoked, expired, or points at a deleted account. Only store failures are errors.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if !session.ActiveAt(s.now()) {
		return nil, nil
	}

	account, err := s.accounts.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session account: %w", err)
	}
	return account, nil
}
