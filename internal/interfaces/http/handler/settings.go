package handler

import (
	"regexp"

	settingsapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/settings"
	"github.com/gin-gonic/gin"
)

var settingKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)+$`)

// SettingsHandler exposes the key-value store configuring the shop
type SettingsHandler struct {
	BaseHandler
	settingsService SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// ListPublic godoc
// @Summary      Public settings
// @Description  Settings the storefront may read, such as the shop name, delivery fee and minimum order amount
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.Response{data=[]settingsapp.SettingResponse}
// @Router       /settings [get]
func (h *SettingsHandler) ListPublic(c *gin.Context) {
	list, err := h.settingsService.ListPublic(c.Request.Context())
	h.respond(c, list, err)
}

// ListAll godoc
// @Summary      All settings
// @Tags         admin-settings
// @Produce      json
// @Success      200 {object} dto.Response{data=[]settingsapp.SettingResponse}
// @Security     BearerAuth
// @Router       /admin/settings [get]
func (h *SettingsHandler) ListAll(c *gin.Context) {
	list, err := h.settingsService.ListAll(c.Request.Context())
	h.respond(c, list, err)
}

func (h *SettingsHandler) respond(c *gin.Context, list []settingsapp.SettingResponse, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if list == nil {
		list = []settingsapp.SettingResponse{}
	}
	h.Success(c, list)
}

// Update godoc
// @Summary      Create or update a setting
// @Description  The value is validated against the setting type. New keys need a type.
// @Tags         admin-settings
// @Accept       json
// @Produce      json
// @Param        key path string true "Setting key" example(order.delivery_fee)
// @Param        request body settingsapp.UpdateSettingRequest true "Value"
// @Success      200 {object} dto.Response{data=settingsapp.SettingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/settings/{key} [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 100 || !settingKeyPattern.MatchString(key) {
		h.BadRequest(c, "Setting keys look like group.name")
		return
	}
	var req settingsapp.UpdateSettingRequest
	if !h.bind(c, &req) {
		return
	}
	setting, err := h.settingsService.Update(c.Request.Context(), key, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, setting)
}
