// Package report holds the schema-driven tabular report engine: entity schemas,
// unit scoping, the filter pipeline, value presentation and CSV export.
package report

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SlnoKey is the reserved key of the row index column. Its value is never read from a row.
const SlnoKey = "slno"

// ColumnKind is the semantic kind of a column, which drives filtering and rendering
type ColumnKind string

const (
	KindPlain   ColumnKind = "plain"
	KindDate    ColumnKind = "date"
	KindYear    ColumnKind = "year"
	KindNumeric ColumnKind = "numeric"
	KindBoolean ColumnKind = "boolean"
)

// IsValid reports whether k is a known column kind
func (k ColumnKind) IsValid() bool {
	switch k {
	case KindPlain, KindDate, KindYear, KindNumeric, KindBoolean:
		return true
	}
	return false
}

// ColumnSpec describes one column of an entity
type ColumnSpec struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Kind  ColumnKind `json:"kind"`
	// LinkPrefix turns non-empty values into links (e.g. https://doi.org/ for DOIs).
	LinkPrefix string `json:"link_prefix,omitempty"`
}

// Group categorises entities the way the reporting screens are organised
type Group string

const (
	GroupAcademics Group = "academics"
	GroupResearch  Group = "research"
	GroupPersonal  Group = "personal"
	GroupEducation Group = "education"
)

// EntitySchema is the static description of a reportable entity.
// Column order is the canonical display and export order.
type EntitySchema struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Group       Group        `json:"group"`
	Columns     []ColumnSpec `json:"columns"`
	// IdentityKey names the person column that every selection must include (empty if none).
	IdentityKey string `json:"identity_key,omitempty"`
	// DefaultColumns is the initial selection; empty means every column.
	DefaultColumns []string `json:"default_columns,omitempty"`
	// FacetKey names a column offered as an exact-match category filter.
	FacetKey string `json:"facet_key,omitempty"`
}

// Column returns the column with the given key
func (s *EntitySchema) Column(key string) (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// HasColumn reports whether key is declared by the schema
func (s *EntitySchema) HasColumn(key string) bool {
	_, ok := s.Column(key)
	return ok
}

// DataColumns returns the declared columns without the row index column
func (s *EntitySchema) DataColumns() []ColumnSpec {
	cols := make([]ColumnSpec, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Key != SlnoKey {
			cols = append(cols, c)
		}
	}
	return cols
}

// DataKeys returns the keys of DataColumns in declared order
func (s *EntitySchema) DataKeys() []string {
	cols := s.DataColumns()
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// DateFilterColumn returns the active date filter column: the first declared date column
func (s *EntitySchema) DateFilterColumn() (ColumnSpec, bool) {
	for _, c := range s.Columns {
		if c.Kind == KindDate {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// YearFilterColumn returns the active year filter column.
// An entity with a date column never has an active year column.
func (s *EntitySchema) YearFilterColumn() (ColumnSpec, bool) {
	if _, ok := s.DateFilterColumn(); ok {
		return ColumnSpec{}, false
	}
	for _, c := range s.Columns {
		if c.Kind == KindYear {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// IsPersonEntity reports whether the entity identifies a person
func (s *EntitySchema) IsPersonEntity() bool {
	return s.IdentityKey != ""
}

// Label returns the entity display name, deriving one from the id when unset
func (s *EntitySchema) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return DisplayNameFromID(s.ID)
}

// DisplayNameFromID derives a human name from an entity id:
// "fac_eventOrganized" becomes "Event Organized".
func DisplayNameFromID(id string) string {
	name := strings.TrimPrefix(id, "fac_")
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			continue
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(strings.Join(strings.Fields(b.String()), " "))
}
