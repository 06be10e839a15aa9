package report

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered for every missing or sentinel value
const Placeholder = "-"

// SlnoLabel is the header of the row index column
const SlnoLabel = "Sl. No"

// SlnoColumn is the synthetic row index column prepended to display tables
var SlnoColumn = ColumnSpec{Key: SlnoKey, Label: SlnoLabel, Kind: KindPlain}

// FormatCell renders one cell for display. index is the row's 0-based position in the
// currently filtered sequence and only matters for the row index column.
func FormatCell(row Row, column ColumnSpec, index int) string {
	if column.Key == SlnoKey {
		return strconv.Itoa(index + 1)
	}
	v, ok := row.Get(column.Key)
	if !ok || IsSentinel(v) {
		return Placeholder
	}
	switch column.Kind {
	case KindDate:
		day, ok := ParseDay(v)
		if !ok {
			return Placeholder
		}
		return day.Format(DisplayDateLayout)
	case KindYear:
		y, ok := ParseYear(v)
		if !ok {
			return Placeholder
		}
		return strconv.Itoa(y)
	case KindBoolean:
		if isTruthy(v) {
			return "YES"
		}
		return "NO"
	case KindNumeric:
		if d, ok := numeric(v); ok {
			return d.String()
		}
		text := stringify(v)
		if d, err := decimal.NewFromString(strings.TrimSpace(text)); err == nil {
			return d.String()
		}
		return text
	default:
		return stringify(v)
	}
}

// DisplayCell is one rendered cell; Href is set for link columns
type DisplayCell struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// DisplayTable is a rendered view: a header row plus one row of cells per record
type DisplayTable struct {
	Keys    []string        `json:"keys"`
	Headers []string        `json:"headers"`
	Rows    [][]DisplayCell `json:"rows"`
}

// FormatRow renders the row index cell followed by one cell per selected column
func FormatRow(row Row, columns []ColumnSpec, index int) []DisplayCell {
	cells := make([]DisplayCell, 0, len(columns)+1)
	cells = append(cells, DisplayCell{Text: FormatCell(row, SlnoColumn, index)})
	for _, c := range columns {
		cell := DisplayCell{Text: FormatCell(row, c, index)}
		if c.LinkPrefix != "" && cell.Text != Placeholder {
			cell.Href = c.LinkPrefix + cell.Text
		}
		cells = append(cells, cell)
	}
	return cells
}

// FormatTable renders rows under the given selection
func FormatTable(rows []Row, selection ColumnSelection) DisplayTable {
	cols := selection.Columns()
	t := DisplayTable{
		Keys:    make([]string, 0, len(cols)+1),
		Headers: make([]string, 0, len(cols)+1),
		Rows:    make([][]DisplayCell, 0, len(rows)),
	}
	t.Keys = append(t.Keys, SlnoKey)
	t.Headers = append(t.Headers, SlnoLabel)
	for _, c := range cols {
		t.Keys = append(t.Keys, c.Key)
		t.Headers = append(t.Headers, c.Label)
	}
	for i, r := range rows {
		t.Rows = append(t.Rows, FormatRow(r, cols, i))
	}
	return t
}
