// Package storage wraps the S3-compatible bucket that holds exercise demo videos.
package storage

import (
	"context"
	"errors"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

var ErrNotConfigured = errors.New("object storage is not configured")

// FileStorage defines the interface for object storage operations.
//
//go:generate mockgen -source=$GOFILE -destination=../service/storage_mocks_test.go -package=service_test
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows a single PUT
	// of an object with the given content type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

// Disabled is used when no bucket is configured. Every call fails with
// ErrNotConfigured.
type Disabled struct{}

func (Disabled) GeneratePresignedUploadURL(context.Context, string, string, time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) GeneratePresignedDownloadURL(context.Context, string, time.Duration) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) DeleteObject(context.Context, string) error {
	return ErrNotConfigured
}
