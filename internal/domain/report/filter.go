package report

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether day lies within the range, both ends included
func (r DateRange) Contains(day time.Time) bool {
	start, end := truncateDay(r.Start), truncateDay(r.End)
	return !day.Before(start) && !day.After(end)
}

// YearRange is an inclusive range of years
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether y lies within the range, both ends included
func (r YearRange) Contains(y int) bool {
	return y >= r.Start && y <= r.End
}

// FilterState holds the active filter parameters of one view.
// Nil ranges and an empty search term or facet are inactive.
type FilterState struct {
	Search    string     `json:"search,omitempty"`
	DateRange *DateRange `json:"date_range,omitempty"`
	YearRange *YearRange `json:"year_range,omitempty"`
	Facet     string     `json:"facet,omitempty"`
}

// IsZero reports whether no filter is active
func (f FilterState) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.DateRange == nil && f.YearRange == nil && f.Facet == ""
}

// ApplyFilters returns the rows passing every active filter, in input order.
// Rows are shared with the input, never copied or mutated.
func ApplyFilters(rows []Row, schema *EntitySchema, state FilterState) []Row {
	preds := buildPredicates(schema, state)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if keep(row, preds) {
			out = append(out, row)
		}
	}
	return out
}

type predicate func(Row) bool

func keep(row Row, preds []predicate) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}

func buildPredicates(schema *EntitySchema, state FilterState) []predicate {
	var preds []predicate

	dateCol, hasDate := schema.DateFilterColumn()
	yearCol, hasYear := schema.YearFilterColumn()
	switch {
	case state.DateRange != nil && hasDate:
		rng := *state.DateRange
		preds = append(preds, func(r Row) bool {
			day, ok := ParseDay(r.Value(dateCol.Key))
			return ok && rng.Contains(day)
		})
	case state.YearRange != nil && hasYear:
		rng := *state.YearRange
		preds = append(preds, func(r Row) bool {
			y, ok := ParseYear(r.Value(yearCol.Key))
			return ok && rng.Contains(y)
		})
	}

	if state.Facet != "" && schema.FacetKey != "" {
		key, want := schema.FacetKey, state.Facet
		preds = append(preds, func(r Row) bool {
			v, ok := r.Get(key)
			return ok && v != nil && stringify(v) == want
		})
	}

	// a blank term disables search; otherwise the term matches as typed, spaces included
	if strings.TrimSpace(state.Search) != "" {
		folder := cases.Fold()
		needle := folder.String(state.Search)
		keys := schema.DataKeys()
		preds = append(preds, func(r Row) bool {
			for _, key := range keys {
				v, ok := r.Get(key)
				if !ok || v == nil {
					continue
				}
				text := stringify(v)
				if text == "" {
					continue
				}
				if strings.Contains(folder.String(text), needle) {
					return true
				}
			}
			return false
		})
	}
	return preds
}

// FacetValues lists the distinct non-empty facet values present in rows, sorted
func FacetValues(rows []Row, schema *EntitySchema) []string {
	if schema.FacetKey == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v, ok := r.Get(schema.FacetKey)
		if !ok || IsSentinel(v) {
			continue
		}
		s := stringify(v)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
