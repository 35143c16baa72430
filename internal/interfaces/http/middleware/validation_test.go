package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderLine struct {
	Quantity decimal.Decimal `json:"quantity" binding:"dgt0"`
}

type orderForm struct {
	Name  string      `json:"customer_name" binding:"required,min=2"`
	Phone string      `json:"customer_phone" binding:"omitempty,phone"`
	Slug  string      `json:"slug" binding:"omitempty,slug"`
	Lines []orderLine `json:"lines" binding:"required,min=1,dive"`
}

func bindRouter(t *testing.T) *gin.Engine {
	t.Helper()
	require.NoError(t, SetupValidator())
	router := gin.New()
	router.POST("/orders", func(c *gin.Context) {
		var req orderForm
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", "", ValidationDetails(err)))
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidation_Valid(t *testing.T) {
	router := bindRouter(t)
	rec := post(router, `{"customer_name":"Rosa","customer_phone":"+59171234567","slug":"pan-de-batalla","lines":[{"quantity":"2.5"}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidation_Details(t *testing.T) {
	router := bindRouter(t)
	rec := post(router, `{"customer_name":"R","customer_phone":"12ab","slug":"Pan De Batalla","lines":[{"quantity":"0"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	info := decodeError(t, rec)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)

	byField := map[string]dto.ValidationDetail{}
	for _, d := range info.Details {
		byField[d.Field] = d
	}
	require.Len(t, byField, 4)
	assert.Equal(t, dto.ErrCodeValidationLength, byField["customer_name"].Code)
	assert.Contains(t, byField["customer_phone"].Message, "7-15 digits")
	assert.Equal(t, dto.ErrCodeValidationFormat, byField["slug"].Code)
	assert.Equal(t, dto.ErrCodeValidationRange, byField["lines[0].quantity"].Code)
}

func TestValidation_EmptyLines(t *testing.T) {
	router := bindRouter(t)
	rec := post(router, `{"customer_name":"Rosa","lines":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	info := decodeError(t, rec)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "lines", info.Details[0].Field)
	assert.Equal(t, "Must contain at least 1 items", info.Details[0].Message)
}

func TestValidationDetails_NotValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
