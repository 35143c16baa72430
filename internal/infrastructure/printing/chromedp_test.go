package printing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrintParams(t *testing.T) {
	t.Run("A4", func(t *testing.T) {
		p := buildPrintParams(&RenderRequest{PaperSize: PaperA4, Margins: Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}})
		assert.InDelta(t, mmToInches(210), p.paperWidth, 0.01)
		assert.InDelta(t, mmToInches(297), p.paperHeight, 0.01)
		assert.InDelta(t, 0.3937, p.marginTop, 0.001)
		assert.False(t, p.preferCSSPageSize)
	})

	t.Run("receipt roll", func(t *testing.T) {
		p := buildPrintParams(&RenderRequest{PaperSize: PaperReceipt})
		assert.InDelta(t, mmToInches(80), p.paperWidth, 0.01)
		assert.True(t, p.preferCSSPageSize)
	})

	t.Run("landscape", func(t *testing.T) {
		p := buildPrintParams(&RenderRequest{PaperSize: PaperA4, Landscape: true})
		assert.True(t, p.landscape)
	})
}

func TestCompleteHTML(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, completeHTML(&RenderRequest{HTML: full}))

	wrapped := completeHTML(&RenderRequest{HTML: "<p>hola</p>", Title: "A & B"})
	assert.Contains(t, wrapped, "<title>A &amp; B</title>")
	assert.Contains(t, wrapped, "<body><p>hola</p></body>")
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Kids [3 0 R 4 0 R] >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}

func TestChromedpRenderer_RejectsBadRequests(t *testing.T) {
	r := &ChromedpRenderer{}

	_, err := r.Render(context.Background(), &RenderRequest{HTML: "  ", PaperSize: PaperA4})
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)

	_, err = r.Render(context.Background(), &RenderRequest{HTML: "<p>x</p>", PaperSize: "LETTER"})
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidPaperSize, re.Code)
}

func TestDisabledRenderer(t *testing.T) {
	_, err := DisabledRenderer{}.Render(context.Background(), &RenderRequest{HTML: "<p>x</p>"})
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeDisabled, re.Code)
	assert.NoError(t, DisabledRenderer{}.Close())
}
