// Package settings serves the business key-value store. Reads go through an
// optional cache; writes invalidate it across instances.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cache is the read-through cache in front of the repository
type Cache interface {
	Get(ctx context.Context, key string) (*settings.Setting, bool)
	Set(ctx context.Context, s *settings.Setting)
	Invalidate(ctx context.Context, keys ...string) error
}

// Service reads and writes settings
type Service struct {
	repo     settings.Repository
	cache    Cache
	logger   *zap.Logger
	defaults map[string]settings.Setting
}

// NewService creates a settings service. cache may be nil.
func NewService(repo settings.Repository, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := make(map[string]settings.Setting)
	for _, d := range settings.Defaults() {
		defaults[d.Key] = d
	}
	return &Service{repo: repo, cache: cache, logger: logger, defaults: defaults}
}

// Seed inserts the default settings that are missing
func (s *Service) Seed(ctx context.Context) (int64, error) {
	n, err := s.repo.SeedMissing(ctx, settings.Defaults())
	if err != nil {
		return 0, fmt.Errorf("seed settings: %w", err)
	}
	if n > 0 {
		s.logger.Info("Seeded default settings", zap.Int64("count", n))
		s.invalidate(ctx)
	}
	return n, nil
}

// Get returns a setting. A key missing from the store falls back to its
// built-in default; unknown keys return ErrNotFound.
func (s *Service) Get(ctx context.Context, key string) (*settings.Setting, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	stored, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if d, ok := s.defaults[key]; ok {
				return &d, nil
			}
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, stored)
	}
	return stored, nil
}

// Bool reads a BOOL setting. Lookup failures are logged and yield the default.
func (s *Service) Bool(ctx context.Context, key string) bool {
	d := s.defaults[key]
	def := d.Bool(false)
	setting, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Setting lookup failed, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return setting.Bool(def)
}

// Int reads an INT setting
func (s *Service) Int(ctx context.Context, key string) int64 {
	d := s.defaults[key]
	def := d.Int(0)
	setting, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Setting lookup failed, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return setting.Int(def)
}

// Decimal reads a DECIMAL setting
func (s *Service) Decimal(ctx context.Context, key string) decimal.Decimal {
	d := s.defaults[key]
	def := d.Decimal(decimal.Zero)
	setting, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Setting lookup failed, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return setting.Decimal(def)
}

// String reads a STRING setting
func (s *Service) String(ctx context.Context, key string) string {
	setting, err := s.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Setting lookup failed, using default", zap.String("key", key), zap.Error(err))
		return s.defaults[key].Value
	}
	return setting.Value
}

// ListPublic returns the settings the storefront may read
func (s *Service) ListPublic(ctx context.Context) ([]SettingResponse, error) {
	list, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

// ListAll returns every setting for the admin panel
func (s *Service) ListAll(ctx context.Context) ([]SettingResponse, error) {
	list, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

// Update validates and stores a value. A new key needs a type; an existing
// key keeps its type.
func (s *Service) Update(ctx context.Context, key string, req UpdateSettingRequest) (*SettingResponse, error) {
	existing, err := s.repo.Get(ctx, key)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var setting *settings.Setting
	if existing != nil {
		if req.Type != "" && settings.ValueType(req.Type) != existing.Type {
			return nil, shared.NewDomainError("INVALID_TYPE", "Setting type cannot be changed")
		}
		if err := existing.SetValue(req.Value); err != nil {
			return nil, err
		}
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.IsPublic != nil {
			existing.IsPublic = *req.IsPublic
		}
		setting = existing
	} else {
		typ := settings.ValueType(req.Type)
		if d, ok := s.defaults[key]; ok && typ == "" {
			typ = d.Type
		}
		if typ == "" {
			return nil, shared.NewDomainError("INVALID_TYPE", "Type is required for a new setting")
		}
		description := ""
		if req.Description != nil {
			description = *req.Description
		}
		public := req.IsPublic != nil && *req.IsPublic
		setting, err = settings.NewSetting(key, req.Value, typ, req.Group, description, public)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	s.invalidate(ctx, key)

	s.logger.Info("Setting updated", zap.String("key", key))
	resp := toResponse(*setting)
	return &resp, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("Settings cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
