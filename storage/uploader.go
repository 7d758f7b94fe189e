package storage

import (
	"context"
	"io"
)

// UploadResult describes where an uploaded object landed.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores avatar and banner images under caller-chosen keys.
// Keys are stable per owner (e.g. "avatars/user_42"), so re-uploading
// replaces the previous object instead of accumulating copies.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL maps a stored key to its public-facing URL.
	GetPublicURL(key string) string
}
