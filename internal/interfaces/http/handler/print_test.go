package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	printingapp "github.com/VMKayser/Panificadora-Nancy-sub002/internal/application/printing"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/shared"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPrintHandler_Receipt(t *testing.T) {
	orderID := uuid.New()
	doc := &printingapp.Document{
		Filename:    "recibo-PN-000042.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
		Pages:       1,
	}

	t.Run("inline by default", func(t *testing.T) {
		svc := new(mockPrintService)
		svc.On("Receipt", mock.Anything, orderID).Return(doc, nil)
		r := newTestEngine()
		r.GET("/orders/:id/receipt", NewPrintHandler(svc).Receipt)

		w := perform(r, http.MethodGet, "/orders/"+orderID.String()+"/receipt", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `inline; filename="recibo-PN-000042.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
		assert.Equal(t, "1", w.Header().Get("X-Page-Count"))
		assert.Equal(t, "%PDF-1.4", w.Body.String())
	})

	t.Run("download", func(t *testing.T) {
		svc := new(mockPrintService)
		svc.On("Receipt", mock.Anything, orderID).Return(doc, nil)
		r := newTestEngine()
		r.GET("/orders/:id/receipt", NewPrintHandler(svc).Receipt)

		w := perform(r, http.MethodGet, "/orders/"+orderID.String()+"/receipt?download=true", "")

		assert.Equal(t, `attachment; filename="recibo-PN-000042.pdf"`, w.Header().Get("Content-Disposition"))
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := new(mockPrintService)
		svc.On("Receipt", mock.Anything, orderID).Return(nil, shared.ErrNotFound)
		r := newTestEngine()
		r.GET("/orders/:id/receipt", NewPrintHandler(svc).Receipt)

		w := perform(r, http.MethodGet, "/orders/"+orderID.String()+"/receipt", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("printing disabled", func(t *testing.T) {
		svc := new(mockPrintService)
		cause := printing.NewRenderError(printing.ErrCodeDisabled, "PDF rendering is disabled", nil)
		svc.On("Receipt", mock.Anything, orderID).Return(nil, fmt.Errorf("render receipt: %w", cause))
		r := newTestEngine()
		r.GET("/orders/:id/receipt", NewPrintHandler(svc).Receipt)

		w := perform(r, http.MethodGet, "/orders/"+orderID.String()+"/receipt", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_PRINTING_DISABLED")
	})
}

func TestPrintHandler_ProductionSheet(t *testing.T) {
	svc := new(mockPrintService)
	svc.On("ProductionSheet", mock.Anything, mock.MatchedBy(func(day time.Time) bool {
		return day.Format(dayLayout) == "2026-03-01"
	})).Return(&printingapp.Document{Filename: "produccion-2026-03-01.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil)
	r := newTestEngine()
	r.GET("/baker/production/sheet", NewPrintHandler(svc).ProductionSheet)

	w := perform(r, http.MethodGet, "/baker/production/sheet?date=2026-03-01", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Page-Count"))
	svc.AssertExpectations(t)
}
