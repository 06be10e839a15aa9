package report

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/facultymis/backend/internal/domain/shared"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVContentType is the media type of CSV exports
const CSVContentType = "text/csv; charset=utf-8"

// FilenameParts feeds the deterministic export filename
type FilenameParts struct {
	EntityID string
	Scope    UnitScope
	// Date, when non-zero and DateSuffix is set, is appended as _YYYY-MM-DD
	Date time.Time
}

// ExportOptions tunes the CSV payload
type ExportOptions struct {
	IncludeBOM bool
	DateSuffix bool
}

// Export is a serialised tabular payload ready for download
type Export struct {
	Content     []byte
	Filename    string
	ContentType string
	RowCount    int
	ColumnCount int
}

// ExportRows serialises rows under selection to CSV. Every field is quoted and the first
// column is the 1-based row index. An empty row set yields ErrNothingToExport and no payload.
func ExportRows(rows []Row, schema *EntitySchema, selection ColumnSelection, parts FilenameParts, opts ExportOptions) (*Export, error) {
	if len(rows) == 0 {
		return nil, shared.ErrNothingToExport
	}
	cols := selection.Columns()
	if len(cols) == 0 {
		cols = DefaultSelection(schema).Columns()
	}

	var buf bytes.Buffer
	record := make([]string, 0, len(cols)+1)

	record = append(record, SlnoLabel)
	for _, c := range cols {
		record = append(record, c.Label)
	}
	writeRecord(&buf, record)

	for i, row := range rows {
		record = record[:0]
		record = append(record, FormatCell(row, SlnoColumn, i))
		for _, c := range cols {
			record = append(record, FormatCell(row, c, i))
		}
		writeRecord(&buf, record)
	}

	content := buf.Bytes()
	if opts.IncludeBOM {
		withBOM, _, err := transform.Bytes(unicode.UTF8BOM.NewEncoder(), content)
		if err != nil {
			return nil, err
		}
		content = withBOM
	}

	if parts.EntityID == "" {
		parts.EntityID = schema.ID
	}
	return &Export{
		Content:     content,
		Filename:    ExportFilename(parts, opts.DateSuffix, ".csv"),
		ContentType: CSVContentType,
		RowCount:    len(rows),
		ColumnCount: len(cols) + 1,
	}, nil
}

// writeRecord writes one line with every field quoted and embedded quotes doubled
func writeRecord(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ExportFilename builds <entity>_data_<units|all>[_YYYY-MM-DD]<ext>, restricted to a safe alphabet
func ExportFilename(parts FilenameParts, dateSuffix bool, ext string) string {
	label := parts.Scope.Label()
	if label == "" {
		label = "none"
	}
	name := parts.EntityID + "_data_" + label
	if dateSuffix && !parts.Date.IsZero() {
		name += "_" + parts.Date.Format("2006-01-02")
	}
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	return name + ext
}
