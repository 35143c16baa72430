package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/catalog"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllowedImageTypes is the whitelist of product photo content types.
// SVG is excluded: it can carry scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// imageUploadExpiry is how long a presigned upload URL stays valid
const imageUploadExpiry = 15 * time.Minute

// ImageStorage is the object storage holding product photos
type ImageStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	PublicURL(key string) string
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// RequestImageUpload returns a presigned PUT URL for a new product photo.
// The client uploads directly to storage and then calls AttachImage.
func (s *ProductService) RequestImageUpload(ctx context.Context, productID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	ext, ok := AllowedImageTypes[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG, WebP and GIF images are allowed")
	}
	if fe := strings.ToLower(filepath.Ext(req.FileName)); fe == ".jpeg" || fe == ext {
		ext = fe
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	key := imageKey(product, ext)
	url, expiresAt, err := s.images.GenerateUploadURL(ctx, key, req.ContentType, imageUploadExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}
	return &ImageUploadResponse{UploadURL: url, Key: key, ExpiresAt: expiresAt}, nil
}

// AttachImage sets an uploaded object as the product photo and removes the
// previous one.
func (s *ProductService) AttachImage(ctx context.Context, productID uuid.UUID, req AttachImageRequest) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	prefix := "products/" + productID.String() + "/"
	if !strings.HasPrefix(req.Key, prefix) || strings.Contains(req.Key, "..") {
		return nil, shared.NewDomainError("INVALID_INPUT", "Image key does not belong to this product")
	}

	exists, err := s.images.ObjectExists(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("check uploaded image: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "The image has not been uploaded yet")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	previous := product.ImageKey
	product.SetImage(req.Key)
	if err := s.productRepo.Save(ctx, product, false); err != nil {
		return nil, err
	}

	if previous != "" && previous != req.Key {
		if err := s.images.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete replaced product image", zap.String("key", previous), zap.Error(err))
		}
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// RemoveImage detaches and deletes the product photo
func (s *ProductService) RemoveImage(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	previous := product.ImageKey
	if previous == "" {
		resp := s.toResponse(product)
		return &resp, nil
	}
	product.SetImage("")
	if err := s.productRepo.Save(ctx, product, false); err != nil {
		return nil, err
	}
	if s.images != nil {
		if err := s.images.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete product image", zap.String("key", previous), zap.Error(err))
		}
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// imageKey is products/{id}/{slug}-{random}{ext}
func imageKey(p *catalog.Product, ext string) string {
	return fmt.Sprintf("products/%s/%s-%s%s", p.ID, p.Slug, uuid.NewString()[:8], ext)
}
