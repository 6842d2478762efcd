package dto

import "io"

// UploadRequest carries one multipart evidence file into the service.
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Description string
	Body        io.Reader
}
