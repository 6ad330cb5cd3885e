package storage

import (
	"context"
	"io"
	"time"
)

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket    string
	KeyPrefix string
	// PublicBaseURL, when set, is used to build returned object URLs instead
	// of a presigned link (e.g. a CDN or public-bucket endpoint).
	PublicBaseURL string
}

// Service stores event cover images in remote object storage.
type Service interface {
	Upload(ctx context.Context, opts UploadOptions, key, contentType string, body io.Reader) (string, error)
	ObjectURL(ctx context.Context, opts UploadOptions, key string, expires time.Duration) (string, error)
}
