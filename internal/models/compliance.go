package models

import "time"

// UploadKind classifies compliance evidence.
type UploadKind string

const (
	UploadKindImage UploadKind = "image"
	UploadKindVideo UploadKind = "video"
)

// ComplianceUpload is the metadata row for one stored evidence file.
// FilePath holds the blob key; Filename keeps the name the operator uploaded.
type ComplianceUpload struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Filename    string     `db:"filename" json:"filename"`
	FilePath    string     `db:"file_path" json:"file_path"`
	FileType    UploadKind `db:"file_type" json:"file_type"`
	ContentType string     `db:"content_type" json:"content_type"`
	SizeBytes   int64      `db:"size_bytes" json:"size_bytes"`
	Description *string    `db:"description" json:"description"`
	UploadedAt  time.Time  `db:"uploaded_at" json:"uploaded_at"`
}
