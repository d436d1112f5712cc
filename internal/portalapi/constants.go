package portalapi

import "time"

const (
	// DefaultTimeout is the standard timeout for JSON calls (projects, login)
	DefaultTimeout = 30 * time.Second

	// UploadTimeout is for multipart uploads, which carry whole spreadsheets
	UploadTimeout = 2 * time.Minute

	// FileField is the multipart field name the upload endpoint reads
	FileField = "file"

	maxErrorBody = 64 << 10
)
