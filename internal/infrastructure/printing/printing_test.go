package printing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc(headers int) TableDocument {
	t := report.DisplayTable{Headers: []string{"Sl. No", "Faculty Name"}}
	for len(t.Headers) < headers {
		t.Headers = append(t.Headers, "Extra")
	}
	t.Rows = [][]report.DisplayCell{
		{{Text: "1"}, {Text: "Dr. <Asha> & Co"}},
		{{Text: "2"}, {Text: "10.1000/182", Href: "https://doi.org/10.1000/182"}},
		{{Text: "3"}, {Text: "x", Href: "javascript:alert(1)"}},
	}
	return TableDocument{
		Title:       "Teaching Experience",
		Scope:       "CS, EC",
		Filters:     []string{"From 01-01-2020 to 31-12-2021"},
		GeneratedAt: time.Date(2026, 3, 9, 14, 5, 0, 0, time.UTC),
		Table:       t,
	}
}

func TestRenderTableHTML(t *testing.T) {
	html, err := RenderTableHTML(sampleDoc(2))
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Teaching Experience</title>")
	assert.Contains(t, html, "Units: CS, EC")
	assert.Contains(t, html, "From 01-01-2020 to 31-12-2021")
	assert.Contains(t, html, "Generated 09-03-2026 14:05")
	assert.Contains(t, html, "<th>Sl. No</th><th>Faculty Name</th>")

	t.Run("cell text is escaped", func(t *testing.T) {
		assert.Contains(t, html, "Dr. &lt;Asha&gt; &amp; Co")
		assert.NotContains(t, html, "<Asha>")
	})

	t.Run("link cells become anchors", func(t *testing.T) {
		assert.Contains(t, html, `<a href="https://doi.org/10.1000/182">10.1000/182</a>`)
	})

	t.Run("unsafe links are neutralised", func(t *testing.T) {
		assert.NotContains(t, html, "javascript:alert")
	})
}

func TestTableRequest(t *testing.T) {
	t.Run("narrow tables print portrait", func(t *testing.T) {
		req, err := TableRequest(sampleDoc(3))
		require.NoError(t, err)
		assert.False(t, req.Landscape)
		assert.Equal(t, PaperA4, req.PaperSize)
		assert.Contains(t, req.FooterHTML, "totalPages")
	})

	t.Run("wide tables print landscape", func(t *testing.T) {
		req, err := TableRequest(sampleDoc(LandscapeColumnThreshold))
		require.NoError(t, err)
		assert.True(t, req.Landscape)
	})
}

func TestBuildPrintParams(t *testing.T) {
	t.Run("A4 portrait with default margins", func(t *testing.T) {
		p := buildPrintParams(&RenderRequest{HTML: "<p>x</p>"})
		assert.InDelta(t, mmToInches(210), p.PaperWidth, 0.001)
		assert.InDelta(t, mmToInches(297), p.PaperHeight, 0.001)
		assert.False(t, p.Landscape)
		assert.InDelta(t, mmToInches(DefaultMargins().Top), p.MarginTop, 0.001)
		assert.False(t, p.DisplayHeaderFooter)
	})

	t.Run("A3 landscape", func(t *testing.T) {
		p := buildPrintParams(&RenderRequest{HTML: "<p>x</p>", PaperSize: PaperA3, Landscape: true})
		assert.InDelta(t, mmToInches(297), p.PaperWidth, 0.001)
		assert.True(t, p.Landscape)
	})

	t.Run("footer reserves a bottom margin", func(t *testing.T) {
		p := buildPrintParams(&RenderRequest{
			HTML:       "<p>x</p>",
			Margins:    Margins{Top: 5, Right: 5, Bottom: 2, Left: 5},
			FooterHTML: footerTemplate,
		})
		assert.True(t, p.DisplayHeaderFooter)
		assert.InDelta(t, mmToInches(10), p.MarginBottom, 0.001)
		assert.Equal(t, footerTemplate, p.FooterTemplate)
	})
}

func TestCompleteHTML(t *testing.T) {
	t.Run("wraps fragments", func(t *testing.T) {
		out := completeHTML(&RenderRequest{HTML: "<p>hi</p>", Title: "A & B"})
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
		assert.Contains(t, out, "<title>A &amp; B</title>")
		assert.Contains(t, out, "<body><p>hi</p></body>")
	})

	t.Run("full documents pass through", func(t *testing.T) {
		doc := "<!DOCTYPE html><html><body>x</body></html>"
		assert.Equal(t, doc, completeHTML(&RenderRequest{HTML: doc}))
	})
}

func TestChromedpRenderer_RejectsBadRequests(t *testing.T) {
	r := NewChromedpRenderer(config.PrintingConfig{Timeout: time.Second}, nil)
	defer r.Close()

	tests := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"blank html", &RenderRequest{HTML: "  "}, ErrCodeInvalidHTML},
		{"unknown paper", &RenderRequest{HTML: "<p>x</p>", PaperSize: "B5"}, ErrCodeInvalidPaperSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(context.Background(), tt.req)
			var re *RenderError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF-1.4")))
}
