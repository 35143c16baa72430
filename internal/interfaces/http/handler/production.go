package handler

import (
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	productionapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/production"
	"github.com/gin-gonic/gin"
)

// ProductionHandler serves the baker workflow
type ProductionHandler struct {
	BaseHandler
	productionService ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(productionService ProductionService) *ProductionHandler {
	return &ProductionHandler{productionService: productionService}
}

// Queue godoc
// @Summary      Production queue
// @Description  Confirmed and in-production orders due on a day, oldest first
// @Tags         production
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), today by default"
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /baker/production/queue [get]
func (h *ProductionHandler) Queue(c *gin.Context) {
	day, ok := h.queryDay(c)
	if !ok {
		return
	}
	orders, err := h.productionService.Queue(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if orders == nil {
		orders = []orderapp.OrderResponse{}
	}
	h.Success(c, orders)
}

// Plan godoc
// @Summary      Daily production plan
// @Description  Quantity to bake per product, summed over the orders of a day
// @Tags         production
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), today by default"
// @Success      200 {object} dto.Response{data=productionapp.PlanResponse}
// @Security     BearerAuth
// @Router       /baker/production/plan [get]
func (h *ProductionHandler) Plan(c *gin.Context) {
	day, ok := h.queryDay(c)
	if !ok {
		return
	}
	plan, err := h.productionService.Plan(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// RecordBatch godoc
// @Summary      Record a baked batch
// @Description  Adds the batch to the product stock and consumes the recipe ingredients
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        request body productionapp.RecordBatchRequest true "Batch"
// @Success      201 {object} dto.Response{data=productionapp.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /baker/production/batches [post]
func (h *ProductionHandler) RecordBatch(c *gin.Context) {
	bakerID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req productionapp.RecordBatchRequest
	if !h.bind(c, &req) {
		return
	}
	batch, err := h.productionService.RecordBatch(c.Request.Context(), bakerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// ListBatches godoc
// @Summary      Batches of a day
// @Tags         production
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), today by default"
// @Success      200 {object} dto.Response{data=[]productionapp.BatchResponse}
// @Security     BearerAuth
// @Router       /baker/production/batches [get]
func (h *ProductionHandler) ListBatches(c *gin.Context) {
	day, ok := h.queryDay(c)
	if !ok {
		return
	}
	batches, err := h.productionService.ListBatches(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if batches == nil {
		batches = []productionapp.BatchResponse{}
	}
	h.Success(c, batches)
}
