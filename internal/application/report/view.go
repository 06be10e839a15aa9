// Package report holds the report engine's use cases: per-caller views over one entity,
// the view registry, and the service the HTTP and CLI surfaces call.
package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ViewStatus is the load state of a view
type ViewStatus string

const (
	StatusIdle    ViewStatus = "idle"
	StatusLoading ViewStatus = "loading"
	StatusReady   ViewStatus = "ready"
	StatusEmpty   ViewStatus = "empty"
	StatusError   ViewStatus = "error"
)

// ViewDeps are the collaborators shared by every view
type ViewDeps struct {
	Registry *report.Registry
	Source   report.Source
	Export   report.ExportOptions
	Metrics  *telemetry.ReportMetrics
	Logger   *zap.Logger
	Now      func() time.Time
}

func (d ViewDeps) withDefaults() ViewDeps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type loadKey struct {
	entity string
	scope  string
}

// View is one caller's report over a single entity: the fetched rows plus the scope,
// filter and column selection applied to them.
//
// The mutex only guards state. Fetches run unlocked and each takes a sequence number;
// a fetch that completes after a newer one was issued is dropped.
type View struct {
	id     string
	caller report.Caller
	deps   ViewDeps

	mu          sync.Mutex
	schema      *report.EntitySchema
	scope       report.UnitScope
	filter      report.FilterState
	selection   report.ColumnSelection
	rows        []report.Row
	loaded      loadKey
	diagnostics []report.Diagnostic
	status      ViewStatus
	lastErr     error
	seq         uint64
	lastUsed    time.Time
}

// NewView creates an idle view for caller
func NewView(id string, caller report.Caller, deps ViewDeps) *View {
	deps = deps.withDefaults()
	return &View{
		id:       id,
		caller:   caller,
		deps:     deps,
		status:   StatusIdle,
		lastUsed: deps.Now(),
	}
}

// ID returns the view id
func (v *View) ID() string { return v.id }

// Caller returns the caller the view was opened for
func (v *View) Caller() report.Caller { return v.caller }

// LastUsed returns when the view was last touched
func (v *View) LastUsed() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

func (v *View) currentKey() loadKey {
	if v.schema == nil {
		return loadKey{}
	}
	return loadKey{entity: v.schema.ID, scope: v.scope.Key()}
}

// hasCurrentRows reports whether the held rows belong to the current entity and scope
func (v *View) hasCurrentRows() bool {
	return v.schema != nil && !v.scope.IsEmpty() && v.loaded == v.currentKey()
}

// settleIdle abandons any in-flight fetch and marks the view idle when nothing can be fetched
func (v *View) settleIdle() {
	v.seq++
	v.status = StatusIdle
	v.lastErr = nil
}

// SelectEntity switches the view to entityID, resets the column selection and clears the
// facet filter. Rows are fetched when a scope is already set.
func (v *View) SelectEntity(ctx context.Context, entityID string) error {
	schema, err := v.deps.Registry.GetSchema(entityID)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.lastUsed = v.deps.Now()
	if v.schema != nil && v.schema.ID == schema.ID && v.hasCurrentRows() {
		v.mu.Unlock()
		return nil
	}
	v.schema = schema
	v.selection = report.DefaultSelection(schema)
	v.filter.Facet = ""
	if v.scope.IsEmpty() {
		v.settleIdle()
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()
	return v.load(ctx)
}

// SetScope resolves units for the view's caller and fetches when an entity is selected.
// Department-bound callers are pinned to their own department. An empty selection clears
// the scope and leaves the view idle.
func (v *View) SetScope(ctx context.Context, units []string) error {
	scope, err := report.ScopeForCaller(v.caller, units)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.lastUsed = v.deps.Now()
	if scope.Equal(v.scope) && v.hasCurrentRows() {
		v.mu.Unlock()
		return nil
	}
	v.scope = scope
	if scope.IsEmpty() || v.schema == nil {
		v.settleIdle()
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()
	return v.load(ctx)
}

// SetFilter replaces the filter state. Ranges must not end before they start; a range
// the entity has no column for is kept but has no effect.
func (v *View) SetFilter(state report.FilterState) error {
	if r := state.DateRange; r != nil && r.End.Before(r.Start) {
		return shared.ErrInvalidInput.WithMessage("date range ends before it starts")
	}
	if r := state.YearRange; r != nil && r.End < r.Start {
		return shared.ErrInvalidInput.WithMessage("year range ends before it starts")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = v.deps.Now()
	v.filter = state
	return nil
}

// SetColumnSelection chooses the displayed and exported columns. An empty list restores the default.
func (v *View) SetColumnSelection(keys []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = v.deps.Now()
	if v.schema == nil {
		return shared.ErrInvalidState.WithMessage("select an entity before choosing columns")
	}
	sel, err := report.NewColumnSelection(v.schema, keys)
	if err != nil {
		return err
	}
	v.selection = sel
	return nil
}

// Refresh refetches the current entity and scope, bypassing any row cache
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.lastUsed = v.deps.Now()
	if v.schema == nil || v.scope.IsEmpty() {
		v.mu.Unlock()
		return shared.ErrInvalidState.WithMessage("select an entity and units before refreshing")
	}
	v.mu.Unlock()
	return v.load(report.WithFreshRows(ctx))
}

func (v *View) load(ctx context.Context) error {
	v.mu.Lock()
	if v.schema == nil || v.scope.IsEmpty() {
		v.mu.Unlock()
		return nil
	}
	v.seq++
	seq := v.seq
	schema, scope := v.schema, v.scope
	v.status = StatusLoading
	v.mu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "view.fetch",
		telemetry.WithAttribute(telemetry.SpanAttrEntity, schema.ID),
		telemetry.WithAttribute(telemetry.SpanAttrScope, scope.Key()),
	)
	defer span.End()
	log := logger.WithLogger(ctx, v.deps.Logger).With(
		zap.String("view_id", v.id),
		zap.String("entity", schema.ID),
		zap.String("scope", scope.Key()),
	)

	start := v.deps.Now()
	res, err := v.deps.Source.FetchRows(ctx, schema, scope)
	elapsed := v.deps.Now().Sub(start)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		log.Debug("discarding superseded fetch", zap.Uint64("seq", seq), zap.Uint64("latest", v.seq))
		v.deps.Metrics.RecordFetch(ctx, schema.ID, telemetry.OutcomeStale, elapsed, 0)
		return nil
	}

	if err != nil {
		var de *shared.DomainError
		if !errors.As(err, &de) {
			err = shared.ErrSourceUnavailable.Wrap(err)
		}
		v.status = StatusError
		v.lastErr = err
		telemetry.RecordError(span, err)
		v.deps.Metrics.RecordFetch(ctx, schema.ID, telemetry.OutcomeError, elapsed, 0)
		log.Warn("fetch failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return err
	}

	v.rows = res.Rows
	v.diagnostics = res.Diagnostics
	v.loaded = loadKey{entity: schema.ID, scope: scope.Key()}
	v.lastErr = nil
	outcome := telemetry.OutcomeOK
	v.status = StatusReady
	if len(res.Rows) == 0 {
		outcome = telemetry.OutcomeEmpty
		v.status = StatusEmpty
	}
	v.deps.Metrics.RecordFetch(ctx, schema.ID, outcome, elapsed, len(res.Rows))
	if len(res.Diagnostics) > 0 {
		log.Warn("rows normalised with diagnostics", zap.Int("diagnostics", len(res.Diagnostics)))
	}
	log.Debug("fetch completed", zap.Int("rows", len(res.Rows)), zap.Duration("elapsed", elapsed))
	return nil
}

// Frame is a consistent copy of what the view currently shows
type Frame struct {
	Schema    *report.EntitySchema
	Scope     report.UnitScope
	Filter    report.FilterState
	Selection report.ColumnSelection
	// Rows are the filtered rows; Total counts the rows before filtering
	Rows  []report.Row
	Total int
}

// CurrentFrame filters the held rows under the current state. Rows fetched for another
// entity or scope are never shown.
func (v *View) CurrentFrame() (Frame, error) {
	v.mu.Lock()
	v.lastUsed = v.deps.Now()
	if v.schema == nil {
		v.mu.Unlock()
		return Frame{}, shared.ErrInvalidState.WithMessage("no entity selected")
	}
	f := Frame{Schema: v.schema, Scope: v.scope, Filter: v.filter, Selection: v.selection}
	var rows []report.Row
	if v.hasCurrentRows() {
		rows = v.rows
	}
	v.mu.Unlock()

	f.Total = len(rows)
	f.Rows = report.ApplyFilters(rows, f.Schema, f.Filter)
	return f, nil
}

// DisplayRows is the rendered, filtered table of a view
type DisplayRows struct {
	Table   report.DisplayTable
	Total   int
	Matched int
}

// GetDisplayRows renders the filtered rows under the column selection.
// A view without an entity or current rows renders an empty table.
func (v *View) GetDisplayRows() DisplayRows {
	f, err := v.CurrentFrame()
	if err != nil {
		return DisplayRows{Table: report.DisplayTable{Rows: [][]report.DisplayCell{}}}
	}
	return DisplayRows{
		Table:   report.FormatTable(f.Rows, f.Selection),
		Total:   f.Total,
		Matched: len(f.Rows),
	}
}

// ExportCurrentView serialises the filtered rows under the column selection to CSV.
// With nothing to export it returns ErrNothingToExport and no payload.
func (v *View) ExportCurrentView(ctx context.Context) (*report.Export, error) {
	f, err := v.CurrentFrame()
	if err != nil {
		return nil, err
	}
	exp, err := report.ExportRows(f.Rows, f.Schema, f.Selection, report.FilenameParts{
		EntityID: f.Schema.ID,
		Scope:    f.Scope,
		Date:     v.deps.Now(),
	}, v.deps.Export)
	if err != nil {
		if errors.Is(err, shared.ErrNothingToExport) {
			v.deps.Metrics.RecordExport(ctx, f.Schema.ID, "csv", telemetry.OutcomeNothing, 0)
		}
		return nil, err
	}
	v.deps.Metrics.RecordExport(ctx, f.Schema.ID, "csv", telemetry.OutcomeOK, exp.RowCount)
	return exp, nil
}

// Facets lists the distinct facet values of the current rows
func (v *View) Facets() []string {
	v.mu.Lock()
	schema, rows, current := v.schema, v.rows, v.hasCurrentRows()
	v.mu.Unlock()
	if !current {
		return nil
	}
	return report.FacetValues(rows, schema)
}

// Snapshot is the observable state of a view
type Snapshot struct {
	ID          string             `json:"id"`
	Entity      string             `json:"entity,omitempty"`
	Scope       string             `json:"scope,omitempty"`
	Filter      report.FilterState `json:"filter"`
	Columns     []string           `json:"columns,omitempty"`
	Status      ViewStatus         `json:"status"`
	RowCount    int                `json:"row_count"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
	Error       *SnapshotError     `json:"error,omitempty"`
}

// SnapshotError describes the last failed fetch
type SnapshotError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Snapshot reports status, diagnostics and the last error
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{
		ID:     v.id,
		Scope:  v.scope.Key(),
		Filter: v.filter,
		Status: v.status,
	}
	if v.schema != nil {
		s.Entity = v.schema.ID
		s.Columns = v.selection.Keys()
	}
	if v.hasCurrentRows() {
		s.RowCount = len(v.rows)
		for _, d := range v.diagnostics {
			s.Diagnostics = append(s.Diagnostics, d.String())
		}
	}
	if v.lastErr != nil {
		se := &SnapshotError{Code: shared.ErrSourceUnavailable.Code, Message: v.lastErr.Error()}
		var de *shared.DomainError
		if errors.As(v.lastErr, &de) {
			se.Code, se.Message = de.Code, de.Message
		}
		s.Error = se
	}
	return s
}
