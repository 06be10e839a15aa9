package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
)

// LandscapeColumnThreshold is the column count from which tables print in landscape
const LandscapeColumnThreshold = 7

// TableDocument is a rendered report view laid out for print
type TableDocument struct {
	Title       string
	Scope       string
	Filters     []string
	GeneratedAt time.Time
	Table       report.DisplayTable
}

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
body { font-family: "DejaVu Sans", Arial, sans-serif; font-size: 9pt; color: #222; }
h1 { font-size: 14pt; margin: 0 0 4px 0; }
.meta { color: #555; margin-bottom: 8px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 3px 5px; text-align: left; vertical-align: top; }
th { background: #e8e8e8; }
tr { page-break-inside: avoid; }
thead { display: table-header-group; }
</style></head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Units: {{.Scope}}{{range .Filters}} &middot; {{.}}{{end}} &middot; Generated {{.GeneratedAt.Format "02-01-2006 15:04"}}</div>
<table>
<thead><tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{range .}}<td>{{if .Href}}<a href="{{.Href}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</body></html>
`))

// footerTemplate is evaluated by Chrome, which fills the pageNumber and totalPages spans
const footerTemplate = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// RenderTableHTML renders doc as a standalone HTML page. Cell text is escaped.
func RenderTableHTML(doc TableDocument) (string, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render table html: %w", err)
	}
	return buf.String(), nil
}

// TableRequest builds the render request of doc: A4 with a page footer, landscape for wide tables
func TableRequest(doc TableDocument) (*RenderRequest, error) {
	html, err := RenderTableHTML(doc)
	if err != nil {
		return nil, err
	}
	return &RenderRequest{
		HTML:       html,
		Title:      doc.Title,
		PaperSize:  PaperA4,
		Landscape:  len(doc.Table.Headers) >= LandscapeColumnThreshold,
		FooterHTML: footerTemplate,
	}, nil
}
