package report

import (
	"fmt"
	"strings"

	"github.com/facultymis/backend/internal/domain/shared"
)

// ColumnSelection is the ordered set of columns chosen for display and export.
// Columns are kept in declared order, with the identity column first for person entities.
type ColumnSelection struct {
	columns []ColumnSpec
}

// DefaultSelection returns the schema's initial selection: DefaultColumns, or every data column
func DefaultSelection(schema *EntitySchema) ColumnSelection {
	if len(schema.DefaultColumns) == 0 {
		return ColumnSelection{columns: orderColumns(schema, nil)}
	}
	want := make(map[string]struct{}, len(schema.DefaultColumns))
	for _, k := range schema.DefaultColumns {
		want[k] = struct{}{}
	}
	return ColumnSelection{columns: orderColumns(schema, want)}
}

// NewColumnSelection builds a selection from keys. Unknown keys are rejected and an
// empty key list falls back to DefaultSelection.
func NewColumnSelection(schema *EntitySchema, keys []string) (ColumnSelection, error) {
	want := make(map[string]struct{}, len(keys))
	var unknown []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || k == SlnoKey {
			continue
		}
		if !schema.HasColumn(k) {
			unknown = append(unknown, k)
			continue
		}
		want[k] = struct{}{}
	}
	if len(unknown) > 0 {
		return ColumnSelection{}, shared.ErrInvalidInput.WithMessage(
			fmt.Sprintf("entity %s has no column(s) %s", schema.ID, strings.Join(unknown, ", ")))
	}
	if len(want) == 0 {
		return DefaultSelection(schema), nil
	}
	return ColumnSelection{columns: orderColumns(schema, want)}, nil
}

// orderColumns returns the wanted data columns (all when want is nil) in declared order,
// always including the identity column and placing it first.
func orderColumns(schema *EntitySchema, want map[string]struct{}) []ColumnSpec {
	var cols []ColumnSpec
	if id, ok := schema.Column(schema.IdentityKey); ok && schema.IsPersonEntity() {
		cols = append(cols, id)
	}
	for _, c := range schema.DataColumns() {
		if c.Key == schema.IdentityKey {
			continue
		}
		if want != nil {
			if _, ok := want[c.Key]; !ok {
				continue
			}
		}
		cols = append(cols, c)
	}
	return cols
}

// Columns returns a copy of the selected columns
func (s ColumnSelection) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(s.columns))
	copy(out, s.columns)
	return out
}

// Keys returns the selected column keys in order
func (s ColumnSelection) Keys() []string {
	keys := make([]string, len(s.columns))
	for i, c := range s.columns {
		keys[i] = c.Key
	}
	return keys
}

// Len returns the number of selected columns
func (s ColumnSelection) Len() int { return len(s.columns) }
