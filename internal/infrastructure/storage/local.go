package storage

import (
	"context"
	"strings"
	"time"

	infraconfig "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DisabledObjectStorage is used when storage is switched off. Upload URLs
// point at PublicBaseURL so a developer can serve files from any static host,
// and every key is reported as present.
type DisabledObjectStorage struct {
	BaseURL string
}

// NewDisabledObjectStorage creates a DisabledObjectStorage
func NewDisabledObjectStorage(baseURL string) *DisabledObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &DisabledObjectStorage{BaseURL: strings.TrimRight(baseURL, "/")}
}

// GenerateUploadURL returns PUT target on the static base URL
func (s *DisabledObjectStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return s.BaseURL + "/" + key, time.Now().Add(expiresIn), nil
}

// PublicURL returns the static URL of key
func (s *DisabledObjectStorage) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return s.BaseURL + "/" + key
}

// DeleteObject is a no-op
func (s *DisabledObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

// ObjectExists always reports true for a non-empty key
func (s *DisabledObjectStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	return true, nil
}

// ObjectStorage is the surface both implementations share
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	PublicURL(key string) string
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// New returns S3 storage when enabled, otherwise the disabled implementation
func New(ctx context.Context, cfg *infraconfig.StorageConfig, logger *zap.Logger) (ObjectStorage, error) {
	if !cfg.Enabled {
		logger.Info("object storage disabled, serving image URLs from public base URL",
			zap.String("base_url", cfg.PublicBaseURL))
		return NewDisabledObjectStorage(cfg.PublicBaseURL), nil
	}
	s, err := NewS3ObjectStorage(ctx, cfg, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		logger.Warn("could not verify storage bucket", zap.String("bucket", s.Bucket()), zap.Error(err))
	}
	return s, nil
}

var (
	_ ObjectStorage = (*S3ObjectStorage)(nil)
	_ ObjectStorage = (*DisabledObjectStorage)(nil)
)
