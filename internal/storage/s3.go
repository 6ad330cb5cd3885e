package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Service stores cover images in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
}

func NewS3Service(client *s3.Client) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
	}
}

func (s *S3Service) Upload(ctx context.Context, opts UploadOptions, key, contentType string, body io.Reader) (string, error) {
	if opts.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}
	key = objectKey(opts.KeyPrefix, key)
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(opts.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return s.ObjectURL(ctx, opts, key, 7*24*time.Hour)
}

func (s *S3Service) ObjectURL(ctx context.Context, opts UploadOptions, key string, expires time.Duration) (string, error) {
	key = strings.TrimLeft(key, "/")

	if opts.PublicBaseURL != "" {
		base := strings.TrimRight(opts.PublicBaseURL, "/")
		escaped := strings.Split(key, "/")
		for i := range escaped {
			escaped[i] = url.PathEscape(escaped[i])
		}
		return base + "/" + strings.Join(escaped, "/"), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func objectKey(prefix, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix != "" && !strings.HasPrefix(key, prefix+"/") {
		if key == "" {
			return prefix
		}
		return prefix + "/" + key
	}
	return key
}
