package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audit actions recorded by services.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionAccountApply = "ACCOUNT_CREATE"
	AuditActionProfileEdit  = "PROFILE_UPDATE"
	AuditActionStatusChange = "STATUS_CHANGE"
	AuditActionUpload       = "COMPLIANCE_UPLOAD"
	AuditActionQuizSubmit   = "QUIZ_SUBMIT"
)

// Audit resources.
const (
	AuditResourceAccount = "account"
	AuditResourceSession = "session"
	AuditResourceUpload  = "compliance_upload"
	AuditResourceQuiz    = "quiz_attempt"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	UserID     *string        `db:"user_id" json:"user_id,omitempty"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID *string        `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  types.JSONText `db:"old_values" json:"old_values,omitempty"`
	NewValues  types.JSONText `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ip_address"`
	UserAgent  string         `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
