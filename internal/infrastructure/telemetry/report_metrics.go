package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Fetch outcomes
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeStale       = "stale"
	OutcomeNothing     = "nothing_to_export"
	OutcomeCacheHit    = "cache_hit"
	OutcomeCacheMiss   = "cache_miss"
	OutcomeCacheBypass = "cache_bypass"
)

// ReportMetrics holds the report engine instruments.
type ReportMetrics struct {
	fetchTotal    *Counter
	fetchDuration *Histogram
	fetchedRows   *Counter
	exportTotal   *Counter
	exportedRows  *Counter
	cacheTotal    *Counter
	activeViews   *UpDownCounter
}

// NewReportMetrics registers the report instruments on meter
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	var (
		m   ReportMetrics
		err error
	)
	if m.fetchTotal, err = NewCounter(meter, "report_fetch_total", "Record fetches by entity and outcome", "{fetch}"); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "report_fetch_duration_seconds",
		Description: "Record fetch latency",
		Unit:        "s",
		Boundaries:  FetchDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.fetchedRows, err = NewCounter(meter, "report_fetched_rows_total", "Rows returned by record fetches", "{row}"); err != nil {
		return nil, err
	}
	if m.exportTotal, err = NewCounter(meter, "report_export_total", "Exports by entity, format and outcome", "{export}"); err != nil {
		return nil, err
	}
	if m.exportedRows, err = NewCounter(meter, "report_exported_rows_total", "Rows written to exports", "{row}"); err != nil {
		return nil, err
	}
	if m.cacheTotal, err = NewCounter(meter, "report_row_cache_total", "Row cache lookups by outcome", "{lookup}"); err != nil {
		return nil, err
	}
	if m.activeViews, err = NewUpDownCounter(meter, "report_active_views", "Open report views", "{view}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// NopReportMetrics returns instruments that record nothing
func NopReportMetrics() *ReportMetrics {
	m, _ := NewReportMetrics(noop.NewMeterProvider().Meter("nop"))
	return m
}

// RecordFetch records one fetch of entity with its outcome, duration and row count
func (m *ReportMetrics) RecordFetch(ctx context.Context, entity, outcome string, d time.Duration, rows int) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrEntity.String(entity), AttrOutcome.String(outcome)}
	m.fetchTotal.Inc(ctx, attrs...)
	m.fetchDuration.RecordDuration(ctx, d, attrs...)
	if rows > 0 {
		m.fetchedRows.Add(ctx, int64(rows), AttrEntity.String(entity))
	}
}

// RecordExport records one export attempt
func (m *ReportMetrics) RecordExport(ctx context.Context, entity, format, outcome string, rows int) {
	if m == nil {
		return
	}
	m.exportTotal.Inc(ctx, AttrEntity.String(entity), AttrFormat.String(format), AttrOutcome.String(outcome))
	if rows > 0 {
		m.exportedRows.Add(ctx, int64(rows), AttrEntity.String(entity), AttrFormat.String(format))
	}
}

// RecordCacheLookup records a row cache lookup outcome
func (m *ReportMetrics) RecordCacheLookup(ctx context.Context, entity, outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.Inc(ctx, AttrEntity.String(entity), AttrOutcome.String(outcome))
}

// ViewOpened increments the open view gauge
func (m *ReportMetrics) ViewOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeViews.Add(ctx, 1)
}

// ViewsClosed decrements the open view gauge by n
func (m *ReportMetrics) ViewsClosed(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.activeViews.Add(ctx, -int64(n))
}
