package settings

import (
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/settings"
)

// SettingResponse is a setting in API responses
type SettingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Type        string    `json:"type"`
	Group       string    `json:"group"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateSettingRequest changes a setting value
type UpdateSettingRequest struct {
	Value       string  `json:"value"`
	Type        string  `json:"type" binding:"omitempty,oneof=STRING INT DECIMAL BOOL JSON"`
	Group       string  `json:"group" binding:"max=50"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	IsPublic    *bool   `json:"is_public"`
}

func toResponse(s settings.Setting) SettingResponse {
	return SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Type:        string(s.Type),
		Group:       s.Group,
		Description: s.Description,
		IsPublic:    s.IsPublic,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toResponses(list []settings.Setting) []SettingResponse {
	out := make([]SettingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	return out
}
