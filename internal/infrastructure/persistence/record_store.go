package persistence

import (
	"context"
	"fmt"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/telemetry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage layout of the records database
const (
	// UnitColumn holds the unit (branch) code of every entity row
	UnitColumn    = "brcode"
	BranchesTable = "branches"
)

// RecordStore reads entity rows straight from the records database.
// Each entity lives in a table named after its id; the unscoped read selects every row
// and a unit set adds a brcode IN (...) predicate.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore creates a store over db
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// InUnits restricts a query to rows of the scope's units. AllUnits adds nothing.
func InUnits(scope report.UnitScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.IsAll() {
			return db
		}
		units := scope.Units()
		values := make([]any, len(units))
		for i, u := range units {
			values[i] = u
		}
		return db.Where(clause.IN{Column: clause.Column{Name: UnitColumn}, Values: values})
	}
}

// FetchRows implements report.Source
func (s *RecordStore) FetchRows(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) (*report.FetchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "store.fetch_rows",
		telemetry.WithAttribute(telemetry.SpanAttrEntity, schema.ID),
		telemetry.WithAttribute(telemetry.SpanAttrScope, scope.Key()),
	)
	defer span.End()

	raw, err := s.QueryRecords(ctx, schema, scope)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, rec := range raw {
		delete(rec, UnitColumn)
	}

	rows, diags := report.NormalizeRows(schema, raw)
	telemetry.SetAttributes(span, telemetry.SpanAttrRowCount, len(rows))
	return &report.FetchResult{Rows: rows, Diagnostics: diags}, nil
}

// QueryRecords returns the stored records of schema under scope as plain maps,
// with the unit column included. This is the payload the records API serves.
func (s *RecordStore) QueryRecords(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) ([]map[string]any, error) {
	if scope.IsEmpty() {
		return nil, shared.ErrInvalidInput.WithMessage("no unit scope selected")
	}

	keys := schema.DataKeys()
	columns := make([]clause.Column, 0, len(keys)+1)
	columns = append(columns, clause.Column{Name: UnitColumn})
	for _, k := range keys {
		columns = append(columns, clause.Column{Name: k})
	}

	raw := make([]map[string]any, 0)
	err := s.db.WithContext(ctx).
		Table(schema.ID).
		Clauses(clause.Select{Columns: columns}).
		Scopes(InUnits(scope)).
		Order("id").
		Find(&raw).Error
	if err != nil {
		return nil, shared.ErrSourceUnavailable.Wrap(fmt.Errorf("query %s: %w", schema.ID, err))
	}
	return raw, nil
}

type branchRow struct {
	Code  string `gorm:"column:brcode"`
	Title string `gorm:"column:brcode_title"`
}

// ListUnits implements report.UnitDirectory
func (s *RecordStore) ListUnits(ctx context.Context) ([]report.Unit, error) {
	var rows []branchRow
	if err := s.db.WithContext(ctx).Table(BranchesTable).Order("brcode").Find(&rows).Error; err != nil {
		return nil, shared.ErrSourceUnavailable.Wrap(fmt.Errorf("query branches: %w", err))
	}
	units := make([]report.Unit, len(rows))
	for i, r := range rows {
		units[i] = report.Unit{Code: r.Code, Title: r.Title}
	}
	return units, nil
}

var (
	_ report.Source        = (*RecordStore)(nil)
	_ report.UnitDirectory = (*RecordStore)(nil)
)
