// Package storage keeps product photos in S3-compatible object storage.
// Admins upload straight from the browser with a presigned PUT URL and the
// storefront reads the object through its public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	infraconfig "github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	defaultRegion        = "us-east-1"
	defaultEndpoint      = "localhost:9000"
	defaultPresignExpiry = 15 * time.Minute
)

var ErrEmptyKey = errors.New("storage: key is required")

// S3ObjectStorage talks to AWS S3, MinIO or any server speaking the S3 API
type S3ObjectStorage struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	endpoint  *url.URL
	publicURL string
	pathStyle bool
	expiry    time.Duration
	logger    *zap.Logger
}

type S3ObjectStorageOption func(*S3ObjectStorage)

func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) { s.logger = logger }
}

func NewS3ObjectStorage(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("storage: configuration is required")
	case cfg.Bucket == "":
		return nil, errors.New("storage: bucket is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("storage: access key and secret key are required")
	}

	endpoint, err := endpointURL(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint.String())
		o.UsePathStyle = cfg.UsePathStyle
	})

	s := &S3ObjectStorage{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		pathStyle: cfg.UsePathStyle,
		expiry:    cfg.PresignExpiration,
		logger:    zap.NewNop(),
	}
	if s.expiry <= 0 {
		s.expiry = defaultPresignExpiry
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// endpointURL accepts "host:port" or a full URL; a bare host gets http or
// https depending on useSSL
func endpointURL(raw string, useSSL bool) (*url.URL, error) {
	if raw == "" {
		raw = defaultEndpoint
	}
	if !strings.Contains(raw, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		raw = scheme + raw
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("storage: invalid endpoint %q", raw)
	}
	return u, nil
}

// isNotFound covers the typed S3 errors and the bare codes some
// S3-compatible servers send instead
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

func (s *S3ObjectStorage) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket on first start against a fresh MinIO
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("storage: head bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyOwnedByYou" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GenerateUploadURL presigns a PUT of key. A non-positive expiresIn uses the
// configured expiry.
func (s *S3ObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = s.expiry
	}
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// PublicURL is where the storefront loads key from: the CDN base when one is
// configured, otherwise the bucket itself, which must allow anonymous reads.
func (s *S3ObjectStorage) PublicURL(key string) string {
	switch {
	case key == "":
		return ""
	case s.publicURL != "":
		return s.publicURL + "/" + key
	case s.pathStyle:
		return s.endpoint.String() + "/" + s.bucket + "/" + key
	default:
		return s.endpoint.Scheme + "://" + s.bucket + "." + s.endpoint.Host + "/" + key
	}
}

func (s *S3ObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// ObjectExists confirms an upload finished before the product points at it
func (s *S3ObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("storage: head %s: %w", key, err)
	}
}
