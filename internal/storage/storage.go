// Package storage archives backup artifacts to an off-site blob store.
package storage

import "context"

// UploadInput represents a single upload operation.
type UploadInput struct {
	Key         string
	Body        []byte
	ContentType string
}

// UploadResult describes the persisted artifact.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader defines the minimal behavior needed to store blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}
