package handler

import (
	"net/http"
	"strconv"

	printingapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/printing"
	"github.com/gin-gonic/gin"
)

// PrintHandler serves rendered PDFs
type PrintHandler struct {
	BaseHandler
	printService PrintService
}

// NewPrintHandler creates a new PrintHandler
func NewPrintHandler(printService PrintService) *PrintHandler {
	return &PrintHandler{printService: printService}
}

// Receipt godoc
// @Summary      Order receipt
// @Description  Renders the receipt of an order as a PDF
// @Tags         print
// @Produce      application/pdf
// @Param        id       path  string true  "Order ID" format(uuid)
// @Param        download query bool   false "Send as attachment instead of inline"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/receipt [get]
func (h *PrintHandler) Receipt(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	doc, err := h.printService.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.serve(c, doc)
}

// ProductionSheet godoc
// @Summary      Daily production sheet
// @Description  Renders the production plan and queue of a day as a PDF
// @Tags         print
// @Produce      application/pdf
// @Param        date     query string false "Day (YYYY-MM-DD), today by default"
// @Param        download query bool   false "Send as attachment instead of inline"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /baker/production/sheet [get]
func (h *PrintHandler) ProductionSheet(c *gin.Context) {
	day, ok := h.queryDay(c)
	if !ok {
		return
	}
	doc, err := h.printService.ProductionSheet(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.serve(c, doc)
}

func (h *PrintHandler) serve(c *gin.Context, doc *printingapp.Document) {
	disposition := "inline"
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+doc.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	if doc.Pages > 0 {
		c.Header("X-Page-Count", strconv.Itoa(doc.Pages))
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
