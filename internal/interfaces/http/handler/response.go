package handler

import "github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/dto"

// Swagger-only shapes. Handlers write dto.Response; these give the generated
// docs a typed data field.

// APIResponse is dto.Response with a typed payload
// @Description Envelope of every successful response
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the envelope of a failed request
// @Description Envelope of every error response; error.code is stable
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData reports how many rows an action touched
type CountData struct {
	Count int64 `json:"count" example:"3"`
}
