package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

// SessionRepository stores opaque session tokens.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session entry.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO sessions (id, user_id, session_token, expires_at, created_at, revoked_at, ip_address, user_agent) VALUES (:id, :user_id, :session_token, :expires_at, :created_at, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByToken returns a session by exact token match, revoked or not.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	const query = `SELECT id, user_id, session_token, expires_at, created_at, revoked_at, ip_address, user_agent FROM sessions WHERE session_token = $1 LIMIT 1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// Revoke marks the session unusable. It reports whether an active row was changed.
func (r *SessionRepository) Revoke(ctx context.Context, token string, at time.Time) (bool, error) {
	const query = `UPDATE sessions SET revoked_at = $2 WHERE session_token = $1 AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, token, at)
	if err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revoke session rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteExpired removes sessions that expired before cutoff.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
