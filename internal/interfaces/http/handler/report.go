package handler

import (
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary godoc
// @ID           getDashboardSummary
// @Summary      Dashboard summary
// @Description  Orders, revenue, average ticket, status and channel breakdown, top products and low-stock count for a period. Defaults to the last seven days.
// @Tags         dashboard
// @Produce      json
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to   query string false "Last day (YYYY-MM-DD)"
// @Param        top  query int    false "Number of top products" default(5) maximum(50)
// @Success      200 {object} APIResponse[report.DashboardResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	var filter report.DashboardFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		h.BadRequest(c, "to must not be before from")
		return
	}
	summary, err := h.dashboardService.Summary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
