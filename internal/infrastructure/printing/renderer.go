// Package printing renders report tables to PDF through headless Chrome.
package printing

import (
	"bytes"
	"context"
	"time"
)

// PaperSize names a supported sheet
type PaperSize string

const (
	PaperA4     PaperSize = "A4"
	PaperA3     PaperSize = "A3"
	PaperLetter PaperSize = "LETTER"
)

// Dimensions returns the portrait width and height in millimetres
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperA3:
		return 297, 420
	case PaperLetter:
		return 215.9, 279.4
	default:
		return 210, 297
	}
}

// IsValid reports whether p is a supported size
func (p PaperSize) IsValid() bool {
	switch p {
	case PaperA4, PaperA3, PaperLetter:
		return true
	}
	return false
}

// Margins are page margins in millimetres
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins suits a dense table on A4
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 10, Bottom: 14, Left: 10}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML      string
	Title     string
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	// FooterHTML uses Chrome's header/footer template classes (pageNumber, totalPages).
	FooterHTML string
	// Timeout overrides the renderer's default
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer converts HTML into a PDF document
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// estimatePageCount counts page objects in a PDF; never less than 1
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
