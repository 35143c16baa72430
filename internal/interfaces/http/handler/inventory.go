package handler

import (
	"context"

	inventoryapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles finished-goods stock, the movement ledger and
// raw materials
type InventoryHandler struct {
	BaseHandler
	inventoryService InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// ListStock godoc
// @Summary      List product stock
// @Tags         inventory
// @Produce      json
// @Param        search    query string false "Product name search"
// @Param        low_stock query bool   false "Only items at or below their minimum"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventory.StockView,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /inventory/stock [get]
func (h *InventoryHandler) ListStock(c *gin.Context) {
	var filter inventoryapp.StockListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.inventoryService.ListStock(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// GetStock godoc
// @Summary      Stock of a product
// @Tags         inventory
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/stock/{product_id} [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID, ok := h.paramID(c, "product_id")
	if !ok {
		return
	}
	stock, err := h.inventoryService.GetStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Restock godoc
// @Summary      Add finished goods
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RestockRequest true "Quantity"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req inventoryapp.RestockRequest
	if !h.bind(c, &req) {
		return
	}
	stock, err := h.inventoryService.Restock(c.Request.Context(), req, userIDPtr(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Adjust godoc
// @Summary      Set stock to a counted value
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustRequest true "Count"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustRequest
	if !h.bind(c, &req) {
		return
	}
	stock, err := h.inventoryService.Adjust(c.Request.Context(), req, userIDPtr(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// RegisterWaste godoc
// @Summary      Write off spoiled goods
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.WasteRequest true "Quantity"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /inventory/waste [post]
func (h *InventoryHandler) RegisterWaste(c *gin.Context) {
	var req inventoryapp.WasteRequest
	if !h.bind(c, &req) {
		return
	}
	stock, err := h.inventoryService.RegisterWaste(c.Request.Context(), req, userIDPtr(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// SetMinimum godoc
// @Summary      Set the low-stock threshold of a product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        product_id path string true "Product ID" format(uuid)
// @Param        request body inventoryapp.SetMinimumRequest true "Threshold"
// @Success      200 {object} dto.Response{data=inventoryapp.StockResponse}
// @Security     BearerAuth
// @Router       /inventory/stock/{product_id}/minimum [put]
func (h *InventoryHandler) SetMinimum(c *gin.Context) {
	productID, ok := h.paramID(c, "product_id")
	if !ok {
		return
	}
	var req inventoryapp.SetMinimumRequest
	if !h.bind(c, &req) {
		return
	}
	stock, err := h.inventoryService.SetMinimum(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// LowStock godoc
// @Summary      Items at or below their minimum
// @Tags         inventory
// @Produce      json
// @Success      200 {object} dto.Response{data=[]inventoryapp.LowStockItem}
// @Security     BearerAuth
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if items == nil {
		items = []inventoryapp.LowStockItem{}
	}
	h.Success(c, items)
}

// ListMovements godoc
// @Summary      Stock movement ledger
// @Tags         inventory
// @Produce      json
// @Param        item_type query string false "Item type" Enums(PRODUCT, INGREDIENT)
// @Param        item_id   query string false "Item ID" format(uuid)
// @Param        order_id  query string false "Order ID" format(uuid)
// @Param        reason    query string false "Movement reason"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventoryapp.MovementResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter inventoryapp.MovementListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.inventoryService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// ListIngredients godoc
// @Summary      List ingredients
// @Tags         ingredients
// @Produce      json
// @Param        search    query string false "Name search"
// @Param        low_stock query bool   false "Only items at or below their minimum"
// @Param        active    query bool   false "Only active ingredients"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]inventoryapp.IngredientResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /ingredients [get]
func (h *InventoryHandler) ListIngredients(c *gin.Context) {
	var filter inventoryapp.IngredientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.inventoryService.ListIngredients(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// GetIngredient godoc
// @Summary      Get an ingredient
// @Tags         ingredients
// @Produce      json
// @Param        id path string true "Ingredient ID" format(uuid)
// @Success      200 {object} dto.Response{data=inventoryapp.IngredientResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ingredients/{id} [get]
func (h *InventoryHandler) GetIngredient(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	ingredient, err := h.inventoryService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ingredient)
}

// CreateIngredient godoc
// @Summary      Register an ingredient
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateIngredientRequest true "Ingredient"
// @Success      201 {object} dto.Response{data=inventoryapp.IngredientResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ingredients [post]
func (h *InventoryHandler) CreateIngredient(c *gin.Context) {
	var req inventoryapp.CreateIngredientRequest
	if !h.bind(c, &req) {
		return
	}
	ingredient, err := h.inventoryService.CreateIngredient(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ingredient)
}

// UpdateIngredient godoc
// @Summary      Update an ingredient
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        id path string true "Ingredient ID" format(uuid)
// @Param        request body inventoryapp.UpdateIngredientRequest true "Ingredient"
// @Success      200 {object} dto.Response{data=inventoryapp.IngredientResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /ingredients/{id} [put]
func (h *InventoryHandler) UpdateIngredient(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.UpdateIngredientRequest
	if !h.bind(c, &req) {
		return
	}
	ingredient, err := h.inventoryService.UpdateIngredient(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ingredient)
}

// PurchaseIngredient godoc
// @Summary      Record an ingredient purchase
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        id path string true "Ingredient ID" format(uuid)
// @Param        request body inventoryapp.IngredientStockRequest true "Quantity bought"
// @Success      200 {object} dto.Response{data=inventoryapp.IngredientResponse}
// @Security     BearerAuth
// @Router       /ingredients/{id}/purchase [post]
func (h *InventoryHandler) PurchaseIngredient(c *gin.Context) {
	h.ingredientStock(c, h.inventoryService.PurchaseIngredient)
}

// AdjustIngredient godoc
// @Summary      Set an ingredient to a counted quantity
// @Tags         ingredients
// @Accept       json
// @Produce      json
// @Param        id path string true "Ingredient ID" format(uuid)
// @Param        request body inventoryapp.IngredientStockRequest true "Counted quantity"
// @Success      200 {object} dto.Response{data=inventoryapp.IngredientResponse}
// @Security     BearerAuth
// @Router       /ingredients/{id}/adjust [post]
func (h *InventoryHandler) AdjustIngredient(c *gin.Context) {
	h.ingredientStock(c, h.inventoryService.AdjustIngredient)
}

type ingredientStockFunc func(context.Context, uuid.UUID, inventoryapp.IngredientStockRequest, *uuid.UUID) (*inventoryapp.IngredientResponse, error)

func (h *InventoryHandler) ingredientStock(c *gin.Context, apply ingredientStockFunc) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.IngredientStockRequest
	if !h.bind(c, &req) {
		return
	}
	ingredient, err := apply(c.Request.Context(), id, req, userIDPtr(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ingredient)
}
