package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured signals that no archival backend is configured.
var ErrNotConfigured = errors.New("storage: no uploader configured")

// NoopUploader is the default when backup archival is disabled.
type NoopUploader struct{}

// Upload always returns ErrNotConfigured.
func (NoopUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, ErrNotConfigured
}
