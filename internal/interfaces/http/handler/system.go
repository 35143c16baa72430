package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler reports build and clock information to the frontends
type SystemHandler struct {
	BaseHandler
	info      SystemInfoResponse
	location  *time.Location
	startTime time.Time
	now       func() time.Time
}

// SystemInfoResponse describes the running server
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name        string `json:"name" example:"Panificadora Nancy"`
	Version     string `json:"version" example:"1.0.0"`
	Environment string `json:"environment" example:"production"`
	GoVersion   string `json:"go_version" example:"go1.25.5"`
	Uptime      string `json:"uptime" example:"1h30m45s"`
	Timezone    string `json:"timezone" example:"America/La_Paz"`
	// ServerTime is the store's local time; pickup dates are validated against it
	ServerTime string `json:"server_time" example:"2026-01-23T08:00:00-04:00"`
}

// NewSystemHandler creates a SystemHandler. A nil location means UTC.
func NewSystemHandler(name, version, environment string, location *time.Location) *SystemHandler {
	if location == nil {
		location = time.UTC
	}
	return &SystemHandler{
		info: SystemInfoResponse{
			Name:        name,
			Version:     version,
			Environment: environment,
			GoVersion:   runtime.Version(),
			Timezone:    location.String(),
		},
		location:  location,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Info godoc
// @ID           getSystemInfo
// @Summary      Server information
// @Description  Version, uptime and the store clock used for pickup scheduling
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	info := h.info
	now := h.now()
	info.Uptime = now.Sub(h.startTime).Round(time.Second).String()
	info.ServerTime = now.In(h.location).Format(time.RFC3339)
	h.Success(c, info)
}
