package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type sessionPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionSweeper deletes sessions that expired longer than retention ago.
// Expired sessions never resolve, so the sweep only reclaims storage.
type SessionSweeper struct {
	repo      sessionPurger
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewSessionSweeper(repo sessionPurger, retention time.Duration, logger *zap.Logger) *SessionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention < 0 {
		retention = 0
	}
	return &SessionSweeper{repo: repo, retention: retention, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Sweep runs one purge pass.
func (s *SessionSweeper) Sweep(ctx context.Context) error {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("expired sessions purged", zap.Int64("count", removed), zap.Time("cutoff", cutoff))
	}
	return nil
}
