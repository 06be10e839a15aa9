package report

import (
	"strings"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
)

// DateLayout is the wire format of filter dates
const DateLayout = "2006-01-02"

// =============================================================================
// Catalogue DTOs
// =============================================================================

// EntityResponse is one registry entry in a listing
type EntityResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Group       string `json:"group"`
	ColumnCount int    `json:"column_count"`
	HasDate     bool   `json:"has_date_filter"`
	HasYear     bool   `json:"has_year_filter"`
	HasFacet    bool   `json:"has_facet"`
}

// EntityDetailResponse is the full schema of one entity
type EntityDetailResponse struct {
	*report.EntitySchema
	DateFilterColumn string `json:"date_filter_column,omitempty"`
	YearFilterColumn string `json:"year_filter_column,omitempty"`
}

func toEntityResponse(s *report.EntitySchema) EntityResponse {
	_, hasDate := s.DateFilterColumn()
	_, hasYear := s.YearFilterColumn()
	return EntityResponse{
		ID:          s.ID,
		DisplayName: s.Label(),
		Group:       string(s.Group),
		ColumnCount: len(s.DataColumns()),
		HasDate:     hasDate,
		HasYear:     hasYear,
		HasFacet:    s.FacetKey != "",
	}
}

func toEntityDetail(s *report.EntitySchema) *EntityDetailResponse {
	d := &EntityDetailResponse{EntitySchema: s}
	if c, ok := s.DateFilterColumn(); ok {
		d.DateFilterColumn = c.Key
	}
	if c, ok := s.YearFilterColumn(); ok {
		d.YearFilterColumn = c.Key
	}
	return d
}

// =============================================================================
// View DTOs
// =============================================================================

// OpenViewRequest opens a view, optionally selecting an entity and units straight away
type OpenViewRequest struct {
	Entity string   `json:"entity" binding:"omitempty,entityid"`
	Units  []string `json:"units" binding:"omitempty,dive,unitcode"`
}

// SelectEntityRequest switches a view's entity
type SelectEntityRequest struct {
	Entity string `json:"entity" binding:"required,entityid"`
}

// SetScopeRequest sets a view's units; "ALL" selects every unit
type SetScopeRequest struct {
	Units []string `json:"units" binding:"dive,unitcode"`
}

// SetColumnsRequest sets a view's column selection; empty restores the default
type SetColumnsRequest struct {
	Columns []string `json:"columns"`
}

// FilterInput is the wire form of a filter. Dates use DateLayout and each range needs
// both ends.
type FilterInput struct {
	Search   string `json:"search" form:"search" binding:"max=200"`
	From     string `json:"from" form:"from"`
	To       string `json:"to" form:"to"`
	YearFrom *int   `json:"year_from" form:"year_from" binding:"omitempty,min=1900,max=2200"`
	YearTo   *int   `json:"year_to" form:"year_to" binding:"omitempty,min=1900,max=2200"`
	Facet    string `json:"facet" form:"facet" binding:"max=200"`
}

// ToState parses in into a filter state
func (in FilterInput) ToState() (report.FilterState, error) {
	state := report.FilterState{Facet: strings.TrimSpace(in.Facet)}
	if strings.TrimSpace(in.Search) != "" {
		state.Search = in.Search
	}

	from, to := strings.TrimSpace(in.From), strings.TrimSpace(in.To)
	switch {
	case from != "" && to != "":
		start, err := time.Parse(DateLayout, from)
		if err != nil {
			return report.FilterState{}, shared.ErrInvalidInput.WithMessage("from must be a date like 2006-01-02")
		}
		end, err := time.Parse(DateLayout, to)
		if err != nil {
			return report.FilterState{}, shared.ErrInvalidInput.WithMessage("to must be a date like 2006-01-02")
		}
		state.DateRange = &report.DateRange{Start: start, End: end}
	case from != "" || to != "":
		return report.FilterState{}, shared.ErrInvalidInput.WithMessage("a date range needs both from and to")
	}

	switch {
	case in.YearFrom != nil && in.YearTo != nil:
		state.YearRange = &report.YearRange{Start: *in.YearFrom, End: *in.YearTo}
	case in.YearFrom != nil || in.YearTo != nil:
		return report.FilterState{}, shared.ErrInvalidInput.WithMessage("a year range needs both year_from and year_to")
	}
	return state, nil
}

// ViewResponse is a view's state plus the facet values available to it
type ViewResponse struct {
	Snapshot
	Facets []string `json:"facets,omitempty"`
}

// ViewRowsResponse is a view's rendered table
type ViewRowsResponse struct {
	Snapshot
	Total   int                 `json:"total"`
	Matched int                 `json:"matched"`
	Table   report.DisplayTable `json:"table"`
}

// =============================================================================
// Export DTOs
// =============================================================================

// Export formats
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// PDFContentType is the media type of PDF exports
const PDFContentType = "application/pdf"

// ExportRequest selects the format and delivery of an export
type ExportRequest struct {
	Format  string `form:"format" binding:"omitempty,oneof=csv pdf"`
	Archive bool   `form:"archive"`
}

// ArchivedExportResponse points at an export stored in object storage
type ArchivedExportResponse struct {
	Key         string    `json:"key"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	RowCount    int       `json:"row_count"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ExportResult is either an inline payload or an archived one
type ExportResult struct {
	Export   *report.Export
	Archived *ArchivedExportResponse
}

// ExportEntityRequest exports one entity without keeping a view open
type ExportEntityRequest struct {
	Entity  string
	Units   []string
	Filter  FilterInput
	Columns []string
	Format  string
}

// =============================================================================
// Summary DTOs
// =============================================================================

// EntityCount is the row count of one entity, or why it could not be counted
type EntityCount struct {
	Entity      string `json:"entity"`
	DisplayName string `json:"display_name"`
	Group       string `json:"group"`
	Rows        int    `json:"rows"`
	Error       string `json:"error,omitempty"`
}

// SummaryResponse counts rows per entity under one scope
type SummaryResponse struct {
	Scope    string        `json:"scope"`
	Entities []EntityCount `json:"entities"`
	Total    int           `json:"total"`
	Failed   int           `json:"failed"`
}
