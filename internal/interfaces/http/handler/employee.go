package handler

import (
	identityapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// EmployeeHandler manages staff accounts
type EmployeeHandler struct {
	BaseHandler
	employeeService EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employeeService EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// List godoc
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Param        search    query string   false "Name or email search"
// @Param        role      query []string false "Role filter" collectionFormat(multi)
// @Param        active    query bool     false "Only active accounts"
// @Param        page      query int      false "Page number" default(1)
// @Param        page_size query int      false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]identityapp.UserResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var filter identityapp.EmployeeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	result, err := h.employeeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// ListBakers godoc
// @Summary      Active bakers
// @Description  Bakers an order can be assigned to
// @Tags         employees
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identityapp.UserResponse}
// @Security     BearerAuth
// @Router       /bakers [get]
func (h *EmployeeHandler) ListBakers(c *gin.Context) {
	bakers, err := h.employeeService.ListByRole(c.Request.Context(), identity.RoleBaker)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if bakers == nil {
		bakers = []identityapp.UserResponse{}
	}
	h.Success(c, bakers)
}

// Get godoc
// @Summary      Get an employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.employeeService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create godoc
// @Summary      Create an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        request body identityapp.CreateEmployeeRequest true "Employee"
// @Success      201 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req identityapp.CreateEmployeeRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.employeeService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update godoc
// @Summary      Update an employee
// @Description  Role changes and deactivation cannot remove the last active admin
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body identityapp.UpdateEmployeeRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	actorID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req identityapp.UpdateEmployeeRequest
	if !h.bind(c, &req) {
		return
	}
	user, err := h.employeeService.Update(c.Request.Context(), id, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate godoc
// @Summary      Deactivate an employee
// @Tags         employees
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/employees/{id}/deactivate [post]
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	actorID, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.employeeService.Deactivate(c.Request.Context(), id, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
