package printing

import (
	"context"
	"time"
)

type PaperSize string

const (
	PaperA4      PaperSize = "A4"
	PaperReceipt PaperSize = "RECEIPT_80MM"
)

// Dimensions is the sheet size in millimetres. The receipt roll has no fixed
// length, its height is the longest ticket Chrome will lay out.
func (p PaperSize) Dimensions() (width, height float64) {
	if p == PaperReceipt {
		return 80, 3000
	}
	return 210, 297
}

func (p PaperSize) IsValid() bool {
	switch p {
	case PaperA4, PaperReceipt:
		return true
	}
	return false
}

// Margins in millimetres.
type Margins struct {
	Top, Right, Bottom, Left float64
}

type RenderRequest struct {
	HTML      string
	Title     string
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	Timeout   time.Duration // zero uses the renderer's default
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns a self-contained HTML document into a PDF.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeDisabled         = "PRINTING_DISABLED"
)

// RenderError is a failed render, tagged with one of the ErrCode constants.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

// ErrorCode lets the HTTP layer map the failure without importing this package.
func (e *RenderError) ErrorCode() string { return e.Code }

// DisabledRenderer stands in when [printing] enabled is false.
type DisabledRenderer struct{}

func (DisabledRenderer) Render(context.Context, *RenderRequest) (*RenderResult, error) {
	return nil, NewRenderError(ErrCodeDisabled, "PDF rendering is disabled", nil)
}

func (DisabledRenderer) Close() error { return nil }

var _ PDFRenderer = DisabledRenderer{}
