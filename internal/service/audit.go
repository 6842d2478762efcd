package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/models"
)

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditTrail writes entries best-effort: failures are logged and swallowed.
type auditTrail struct {
	repo   AuditRecorder
	logger *zap.Logger
}

func (a auditTrail) record(ctx context.Context, entry *models.AuditLog, newValues interface{}) {
	if a.repo == nil {
		return
	}
	if newValues != nil {
		if raw, err := json.Marshal(newValues); err == nil {
			entry.NewValues = raw
		}
	}
	if err := a.repo.CreateAuditLog(ctx, entry); err != nil && a.logger != nil {
		a.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
