package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/infrastructure/printing"
	"github.com/facultymis/backend/internal/infrastructure/storage"
	"github.com/facultymis/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSummaryConcurrency bounds the parallel fetches of a summary
const DefaultSummaryConcurrency = 4

// ExportArchive stores export payloads and hands out time-limited download links
type ExportArchive interface {
	Store(ctx context.Context, filename string, content []byte, contentType string) (*storage.ArchivedObject, error)
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ServiceDeps wires a ReportService. Renderer and Archive are optional.
type ServiceDeps struct {
	Registry *report.Registry
	Units    report.UnitDirectory
	Source   report.Source
	Renderer printing.PDFRenderer
	Archive  ExportArchive

	Views              config.ViewsConfig
	Export             report.ExportOptions
	ArchiveExpiry      time.Duration
	SummaryConcurrency int

	Metrics *telemetry.ReportMetrics
	Logger  *zap.Logger
	Now     func() time.Time
}

// ReportService is the entry point of the report engine for the HTTP and CLI surfaces
type ReportService struct {
	deps  ServiceDeps
	views *ViewManager
	log   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(deps ServiceDeps) *ReportService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SummaryConcurrency <= 0 {
		deps.SummaryConcurrency = DefaultSummaryConcurrency
	}
	if deps.ArchiveExpiry <= 0 {
		deps.ArchiveExpiry = storage.DefaultLinkExpiry
	}
	s := &ReportService{deps: deps, log: deps.Logger.Named("report_service")}
	s.views = NewViewManager(deps.Views, s.viewDeps())
	return s
}

// Views returns the manager holding the service's open views
func (s *ReportService) Views() *ViewManager { return s.views }

// viewDeps returns the collaborators shared by every view of the service
func (s *ReportService) viewDeps() ViewDeps {
	return ViewDeps{
		Registry: s.deps.Registry,
		Source:   s.deps.Source,
		Export:   s.deps.Export,
		Metrics:  s.deps.Metrics,
		Logger:   s.deps.Logger,
		Now:      s.deps.Now,
	}
}

// ===================== Catalogue =====================

// ListEntities lists every registered entity in catalogue order
func (s *ReportService) ListEntities() []EntityResponse {
	schemas := s.deps.Registry.List()
	out := make([]EntityResponse, len(schemas))
	for i, sc := range schemas {
		out[i] = toEntityResponse(sc)
	}
	return out
}

// GetEntity returns the schema of entityID
func (s *ReportService) GetEntity(entityID string) (*EntityDetailResponse, error) {
	sc, err := s.deps.Registry.GetSchema(entityID)
	if err != nil {
		return nil, err
	}
	return toEntityDetail(sc), nil
}

// ListUnits lists the units caller may scope to. Department-bound callers only see their own.
func (s *ReportService) ListUnits(ctx context.Context, caller report.Caller) ([]report.Unit, error) {
	if !caller.Role.IsKnown() {
		return nil, shared.ErrForbidden.WithMessage(fmt.Sprintf("role %q cannot view reports", caller.Role))
	}
	units, err := s.deps.Units.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Role.CanChooseUnits() {
		return units, nil
	}
	dept := strings.TrimSpace(caller.Department)
	own := make([]report.Unit, 0, 1)
	for _, u := range units {
		if u.Code == dept {
			own = append(own, u)
		}
	}
	if len(own) == 0 && dept != "" {
		own = append(own, report.Unit{Code: dept, Title: dept})
	}
	return own, nil
}

// ===================== Views =====================

// OpenView opens a view for caller and applies the requested entity and units.
// A failed fetch leaves the view open with its error in the snapshot; invalid input closes it.
func (s *ReportService) OpenView(ctx context.Context, caller report.Caller, req OpenViewRequest) (*ViewResponse, error) {
	if !caller.Role.IsKnown() {
		return nil, shared.ErrForbidden.WithMessage(fmt.Sprintf("role %q cannot view reports", caller.Role))
	}
	v := s.views.Open(ctx, caller)

	fail := func(err error) (*ViewResponse, error) {
		if errors.Is(err, shared.ErrSourceUnavailable) {
			return s.viewResponse(v), nil
		}
		_ = s.views.Close(ctx, caller, v.ID())
		return nil, err
	}
	if len(req.Units) > 0 || !caller.Role.CanChooseUnits() {
		if err := v.SetScope(ctx, req.Units); err != nil {
			return fail(err)
		}
	}
	if req.Entity != "" {
		if err := v.SelectEntity(ctx, req.Entity); err != nil {
			return fail(err)
		}
	}
	logger.WithLogger(ctx, s.log).Info("View opened", zap.String("view_id", v.ID()), zap.String("entity", req.Entity))
	return s.viewResponse(v), nil
}

func (s *ReportService) viewResponse(v *View) *ViewResponse {
	return &ViewResponse{Snapshot: v.Snapshot(), Facets: v.Facets()}
}

// GetView returns the state of view id
func (s *ReportService) GetView(caller report.Caller, id string) (*ViewResponse, error) {
	v, err := s.views.Get(caller, id)
	if err != nil {
		return nil, err
	}
	return s.viewResponse(v), nil
}

// GetViewRows renders the filtered rows of view id
func (s *ReportService) GetViewRows(caller report.Caller, id string) (*ViewRowsResponse, error) {
	v, err := s.views.Get(caller, id)
	if err != nil {
		return nil, err
	}
	rows := v.GetDisplayRows()
	return &ViewRowsResponse{
		Snapshot: v.Snapshot(),
		Total:    rows.Total,
		Matched:  rows.Matched,
		Table:    rows.Table,
	}, nil
}

// SelectEntity switches the entity of view id
func (s *ReportService) SelectEntity(ctx context.Context, caller report.Caller, id string, req SelectEntityRequest) (*ViewResponse, error) {
	return s.mutate(caller, id, func(v *View) error { return v.SelectEntity(ctx, req.Entity) })
}

// SetScope sets the units of view id
func (s *ReportService) SetScope(ctx context.Context, caller report.Caller, id string, req SetScopeRequest) (*ViewResponse, error) {
	return s.mutate(caller, id, func(v *View) error { return v.SetScope(ctx, req.Units) })
}

// SetFilter replaces the filter of view id
func (s *ReportService) SetFilter(caller report.Caller, id string, in FilterInput) (*ViewResponse, error) {
	state, err := in.ToState()
	if err != nil {
		return nil, err
	}
	return s.mutate(caller, id, func(v *View) error { return v.SetFilter(state) })
}

// SetColumns sets the column selection of view id
func (s *ReportService) SetColumns(caller report.Caller, id string, req SetColumnsRequest) (*ViewResponse, error) {
	return s.mutate(caller, id, func(v *View) error { return v.SetColumnSelection(req.Columns) })
}

// Refresh refetches view id past the row cache
func (s *ReportService) Refresh(ctx context.Context, caller report.Caller, id string) (*ViewResponse, error) {
	return s.mutate(caller, id, func(v *View) error { return v.Refresh(ctx) })
}

// CloseView closes view id
func (s *ReportService) CloseView(ctx context.Context, caller report.Caller, id string) error {
	return s.views.Close(ctx, caller, id)
}

func (s *ReportService) mutate(caller report.Caller, id string, op func(*View) error) (*ViewResponse, error) {
	v, err := s.views.Get(caller, id)
	if err != nil {
		return nil, err
	}
	if err := op(v); err != nil {
		return nil, err
	}
	return s.viewResponse(v), nil
}

// ===================== Export =====================

// ExportView exports view id as CSV or PDF. With Archive set the payload goes to the
// export archive and a download link is returned instead.
func (s *ReportService) ExportView(ctx context.Context, caller report.Caller, id string, req ExportRequest) (*ExportResult, error) {
	v, err := s.views.Get(caller, id)
	if err != nil {
		return nil, err
	}
	return s.export(ctx, v, req)
}

func (s *ReportService) export(ctx context.Context, v *View, req ExportRequest) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatCSV
	}
	if req.Archive && s.deps.Archive == nil {
		return nil, shared.ErrInvalidInput.WithMessage("export archive is not enabled")
	}

	ctx, span := telemetry.StartSpan(ctx, "report.export",
		telemetry.WithAttribute("export.format", format),
		telemetry.WithAttribute("view.id", v.ID()),
	)
	defer span.End()

	var (
		exp *report.Export
		err error
	)
	switch format {
	case FormatCSV:
		exp, err = v.ExportCurrentView(ctx)
	case FormatPDF:
		exp, err = s.renderPDF(ctx, v)
	default:
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unsupported export format %q", req.Format))
	}
	if err != nil {
		if !errors.Is(err, shared.ErrNothingToExport) {
			telemetry.RecordError(span, err)
		}
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRowCount, exp.RowCount)
	return s.deliver(ctx, exp, req.Archive)
}

func (s *ReportService) renderPDF(ctx context.Context, v *View) (*report.Export, error) {
	if s.deps.Renderer == nil {
		return nil, shared.ErrInvalidInput.WithMessage("PDF export is not enabled")
	}
	f, err := v.CurrentFrame()
	if err != nil {
		return nil, err
	}
	if len(f.Rows) == 0 {
		s.deps.Metrics.RecordExport(ctx, f.Schema.ID, FormatPDF, telemetry.OutcomeNothing, 0)
		return nil, shared.ErrNothingToExport
	}

	now := s.deps.Now()
	table := report.FormatTable(f.Rows, f.Selection)
	renderReq, err := printing.TableRequest(printing.TableDocument{
		Title:       f.Schema.Label(),
		Scope:       f.Scope.Key(),
		Filters:     DescribeFilter(f.Schema, f.Filter),
		GeneratedAt: now,
		Table:       table,
	})
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Renderer.Render(ctx, renderReq)
	if err != nil {
		s.deps.Metrics.RecordExport(ctx, f.Schema.ID, FormatPDF, telemetry.OutcomeError, 0)
		logger.WithLogger(ctx, s.log).Error("PDF render failed", zap.String("entity", f.Schema.ID), zap.Error(err))
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	s.deps.Metrics.RecordExport(ctx, f.Schema.ID, FormatPDF, telemetry.OutcomeOK, len(f.Rows))

	return &report.Export{
		Content: res.PDFData,
		Filename: report.ExportFilename(report.FilenameParts{
			EntityID: f.Schema.ID,
			Scope:    f.Scope,
			Date:     now,
		}, s.deps.Export.DateSuffix, ".pdf"),
		ContentType: PDFContentType,
		RowCount:    len(f.Rows),
		ColumnCount: len(table.Headers),
	}, nil
}

func (s *ReportService) deliver(ctx context.Context, exp *report.Export, archive bool) (*ExportResult, error) {
	if !archive {
		return &ExportResult{Export: exp}, nil
	}
	obj, err := s.deps.Archive.Store(ctx, exp.Filename, exp.Content, exp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("archive export: %w", err)
	}
	url, expiresAt, err := s.deps.Archive.DownloadURL(ctx, obj.Key, s.deps.ArchiveExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign archived export: %w", err)
	}
	logger.WithLogger(ctx, s.log).Info("Export archived",
		zap.String("key", obj.Key),
		zap.Int("size", obj.Size),
		zap.Time("expires_at", expiresAt),
	)
	return &ExportResult{Archived: &ArchivedExportResponse{
		Key:         obj.Key,
		Filename:    exp.Filename,
		ContentType: exp.ContentType,
		Size:        obj.Size,
		RowCount:    exp.RowCount,
		URL:         url,
		ExpiresAt:   expiresAt,
	}}, nil
}

// ExportEntity fetches, filters and exports one entity in a single call, using a view
// that is never registered
func (s *ReportService) ExportEntity(ctx context.Context, caller report.Caller, req ExportEntityRequest) (*report.Export, error) {
	scope, err := report.ScopeForCaller(caller, req.Units)
	if err != nil {
		return nil, err
	}
	if scope.IsEmpty() {
		return nil, shared.ErrInvalidInput.WithMessage("select at least one unit")
	}
	state, err := req.Filter.ToState()
	if err != nil {
		return nil, err
	}
	v := NewView("export", caller, s.viewDeps())
	if err := v.SetScope(ctx, req.Units); err != nil {
		return nil, err
	}
	if err := v.SelectEntity(ctx, req.Entity); err != nil {
		return nil, err
	}
	if err := v.SetFilter(state); err != nil {
		return nil, err
	}
	if err := v.SetColumnSelection(req.Columns); err != nil {
		return nil, err
	}
	res, err := s.export(ctx, v, ExportRequest{Format: req.Format})
	if err != nil {
		return nil, err
	}
	return res.Export, nil
}

// DescribeFilter renders the active filters as short human-readable lines
func DescribeFilter(schema *report.EntitySchema, f report.FilterState) []string {
	var out []string
	if f.Search != "" {
		out = append(out, fmt.Sprintf("Search: %q", f.Search))
	}
	if c, ok := schema.DateFilterColumn(); ok && f.DateRange != nil {
		out = append(out, fmt.Sprintf("%s: %s to %s", c.Label,
			f.DateRange.Start.Format(report.DisplayDateLayout), f.DateRange.End.Format(report.DisplayDateLayout)))
	}
	if c, ok := schema.YearFilterColumn(); ok && f.YearRange != nil && f.DateRange == nil {
		out = append(out, fmt.Sprintf("%s: %d to %d", c.Label, f.YearRange.Start, f.YearRange.End))
	}
	if schema.FacetKey != "" && f.Facet != "" {
		label := schema.FacetKey
		if c, ok := schema.Column(schema.FacetKey); ok {
			label = c.Label
		}
		out = append(out, fmt.Sprintf("%s: %s", label, f.Facet))
	}
	return out
}

// ===================== Summary =====================

// Summary counts the rows of every entity under the caller's scope. Entities are fetched
// concurrently; one failing entity is reported in its own entry.
func (s *ReportService) Summary(ctx context.Context, caller report.Caller, units []string) (*SummaryResponse, error) {
	scope, err := report.ScopeForCaller(caller, units)
	if err != nil {
		return nil, err
	}
	if scope.IsEmpty() {
		return nil, shared.ErrInvalidInput.WithMessage("select at least one unit")
	}

	ctx, span := telemetry.StartSpan(ctx, "report.summary",
		telemetry.WithAttribute(telemetry.SpanAttrScope, scope.Key()),
	)
	defer span.End()

	schemas := s.deps.Registry.List()
	counts := make([]EntityCount, len(schemas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.SummaryConcurrency)
	for i, sc := range schemas {
		counts[i] = EntityCount{Entity: sc.ID, DisplayName: sc.Label(), Group: string(sc.Group)}
		g.Go(func() error {
			start := s.deps.Now()
			res, err := s.deps.Source.FetchRows(gctx, sc, scope)
			elapsed := s.deps.Now().Sub(start)
			if err != nil {
				s.deps.Metrics.RecordFetch(gctx, sc.ID, telemetry.OutcomeError, elapsed, 0)
				counts[i].Error = errorMessage(err)
				return nil
			}
			s.deps.Metrics.RecordFetch(gctx, sc.ID, telemetry.OutcomeOK, elapsed, len(res.Rows))
			counts[i].Rows = len(res.Rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &SummaryResponse{Scope: scope.Key(), Entities: counts}
	for _, c := range counts {
		resp.Total += c.Rows
		if c.Error != "" {
			resp.Failed++
		}
	}
	if resp.Failed > 0 {
		logger.WithLogger(ctx, s.log).Warn("Summary incomplete", zap.Int("failed", resp.Failed), zap.String("scope", scope.Key()))
	}
	return resp, nil
}

func errorMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
