package handler

import (
	orderapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/order"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves the cart, the customer's own orders and the staff
// order desk
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Quote godoc
// @Summary      Price a cart
// @Description  Prices the submitted cart lines with delivery fee, availability and earliest ready time. Nothing is stored.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body orderapp.QuoteRequest true "Cart"
// @Success      200 {object} dto.Response{data=orderapp.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/quote [post]
func (h *OrderHandler) Quote(c *gin.Context) {
	var req orderapp.QuoteRequest
	if !h.bind(c, &req) {
		return
	}
	quote, err := h.orderService.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Checkout godoc
// @Summary      Place an online order
// @Description  Turns the cart into a PENDING order. Guests may check out; a bearer token links the order to the account.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body orderapp.CheckoutRequest true "Checkout"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req orderapp.CheckoutRequest
	if !h.bind(c, &req) {
		return
	}
	o, err := h.orderService.Checkout(c.Request.Context(), userIDPtr(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}

// ListMine godoc
// @Summary      List my orders
// @Tags         my-orders
// @Produce      json
// @Param        status    query []string false "Status filter" collectionFormat(multi)
// @Param        page      query int      false "Page number" default(1)
// @Param        page_size query int      false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse,meta=dto.Meta}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	customerID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var filter orderapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.orderService.ListOwn(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// GetMine godoc
// @Summary      Get one of my orders
// @Tags         my-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/orders/{id} [get]
func (h *OrderHandler) GetMine(c *gin.Context) {
	customerID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.GetOwn(c.Request.Context(), id, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// CancelMine godoc
// @Summary      Cancel one of my orders
// @Description  Customers can cancel while the order is still PENDING
// @Tags         my-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.CancelRequest false "Reason"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /me/orders/{id}/cancel [post]
func (h *OrderHandler) CancelMine(c *gin.Context) {
	customerID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req orderapp.CancelRequest
	if !h.bindOptional(c, &req) {
		return
	}
	o, err := h.orderService.CancelOwn(c.Request.Context(), id, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        search    query string   false "Number or customer search"
// @Param        status    query []string false "Status filter" collectionFormat(multi)
// @Param        channel   query string   false "Sales channel" Enums(ONLINE, POS)
// @Param        from      query string   false "From day (YYYY-MM-DD)"
// @Param        to        query string   false "To day (YYYY-MM-DD)"
// @Param        order_by  query string   false "Sort field" Enums(created_at, number, total, scheduled_for)
// @Param        order_dir query string   false "Sort direction" Enums(asc, desc)
// @Param        page      query int      false "Page number" default(1)
// @Param        page_size query int      false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Get godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	o, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// GetByNumber godoc
// @Summary      Find an order by number
// @Tags         orders
// @Produce      json
// @Param        number path string true "Order number" example(PN-20260301-0001)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/number/{number} [get]
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	o, err := h.orderService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// ChangeStatus godoc
// @Summary      Move an order along its lifecycle
// @Description  Confirming or delivering deducts stock exactly once; cancelling a deducted order restores it
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.ChangeStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req orderapp.ChangeStatusRequest
	if !h.bind(c, &req) {
		return
	}
	o, err := h.orderService.ChangeStatus(c.Request.Context(), id, req, userIDPtr(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Cancel godoc
// @Summary      Cancel an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.CancelRequest false "Reason"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req orderapp.CancelRequest
	if !h.bindOptional(c, &req) {
		return
	}
	o, err := h.orderService.Cancel(c.Request.Context(), id, req, userIDPtr(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// MarkPaid godoc
// @Summary      Record the payment of an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.MarkPaidRequest false "Payment method"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/pay [post]
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req orderapp.MarkPaidRequest
	if !h.bindOptional(c, &req) {
		return
	}
	o, err := h.orderService.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// AssignBaker godoc
// @Summary      Assign an order to a baker
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.AssignBakerRequest true "Baker"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/baker [put]
func (h *OrderHandler) AssignBaker(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req orderapp.AssignBakerRequest
	if !h.bind(c, &req) {
		return
	}
	o, err := h.orderService.AssignBaker(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, o)
}

// Sell godoc
// @Summary      Ring up a counter sale
// @Description  Creates a DELIVERED and PAID order and deducts stock in the same transaction
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        request body orderapp.SellRequest true "Sale"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pos/sales [post]
func (h *OrderHandler) Sell(c *gin.Context) {
	sellerID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req orderapp.SellRequest
	if !h.bind(c, &req) {
		return
	}
	o, err := h.orderService.Sell(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, o)
}
