package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:      true,
		Endpoint:     "minio:9000",
		Bucket:       "nancy-images",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewS3ObjectStorage(ctx, nil)
	assert.ErrorContains(t, err, "configuration is required")

	_, err = NewS3ObjectStorage(ctx, &config.StorageConfig{AccessKey: "k", SecretKey: "s"})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewS3ObjectStorage(ctx, &config.StorageConfig{Bucket: "b", AccessKey: "k"})
	assert.ErrorContains(t, err, "secret key are required")
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig())
	require.NoError(t, err)

	assert.Equal(t, "http://minio:9000", s.endpoint.String())
	assert.Equal(t, 15*time.Minute, s.expiry)
	assert.Equal(t, "nancy-images", s.Bucket())

	cfg := validConfig()
	cfg.UseSSL = true
	cfg.PresignExpiration = time.Minute
	s, err = NewS3ObjectStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000", s.endpoint.String())
	assert.Equal(t, time.Minute, s.expiry)
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.GenerateUploadURL(ctx, "", "image/jpeg", 0)
	assert.ErrorIs(t, err, ErrEmptyKey)

	raw, expiresAt, err := s.GenerateUploadURL(ctx, "products/abc/photo.jpg", "image/jpeg", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", u.Host)
	assert.Equal(t, "/nancy-images/products/abc/photo.jpg", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig())
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/nancy-images/p/1.jpg", s.PublicURL("p/1.jpg"))
	assert.Empty(t, s.PublicURL(""))

	cfg := validConfig()
	cfg.UsePathStyle = false
	cfg.Endpoint = "https://s3.us-east-1.amazonaws.com"
	s, err = NewS3ObjectStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://nancy-images.s3.us-east-1.amazonaws.com/p/1.jpg", s.PublicURL("p/1.jpg"))

	cfg.PublicBaseURL = "https://cdn.panificadoranancy.com/"
	s, err = NewS3ObjectStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.panificadoranancy.com/p/1.jpg", s.PublicURL("p/1.jpg"))
}

func TestS3ObjectStorage_EmptyKeys(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), validConfig())
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteObject(context.Background(), ""), ErrEmptyKey)
	_, err = s.ObjectExists(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestNew_Disabled(t *testing.T) {
	store, err := New(context.Background(), &config.StorageConfig{PublicBaseURL: "http://files.local/img/"}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &DisabledObjectStorage{}, store)

	u, _, err := store.GenerateUploadURL(context.Background(), "p/1.png", "image/png", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://files.local/img/p/1.png"))
	assert.Equal(t, "http://files.local/img/p/1.png", store.PublicURL("p/1.png"))

	ok, err := store.ObjectExists(context.Background(), "p/1.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, store.DeleteObject(context.Background(), "p/1.png"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(fmt.Errorf("head: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("dial tcp: connection refused")))
}

func TestEndpointURL(t *testing.T) {
	_, err := endpointURL("http://", false)
	assert.Error(t, err)

	u, err := endpointURL("https://s3.example.com/", false)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", u.String())
}
