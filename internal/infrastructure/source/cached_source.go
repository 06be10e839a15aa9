package source

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/infrastructure/cache"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CachedSource decorates a Source with a RowCache keyed by entity and scope.
// Cache failures degrade to a direct fetch. A context marked with report.WithFreshRows
// drops every cached scope of the entity before refetching, so other views of
// the entity see the new rows on their next load.
type CachedSource struct {
	next    report.Source
	cache   cache.RowCache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *telemetry.ReportMetrics
}

// NewCachedSource wraps next. A nil metrics records nothing.
func NewCachedSource(next report.Source, rc cache.RowCache, ttl time.Duration, log *zap.Logger, metrics *telemetry.ReportMetrics) *CachedSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSource{next: next, cache: rc, ttl: ttl, logger: log.Named("row_cache"), metrics: metrics}
}

type cachedResult struct {
	Rows        []map[string]any    `json:"rows"`
	Diagnostics []report.Diagnostic `json:"diagnostics,omitempty"`
}

// FetchRows implements report.Source
func (c *CachedSource) FetchRows(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) (*report.FetchResult, error) {
	if scope.IsEmpty() {
		return c.next.FetchRows(ctx, schema, scope)
	}
	key := cache.RowKey(schema.ID, scope.Key())
	log := logger.WithLogger(ctx, c.logger)
	span := trace.SpanFromContext(ctx)

	if report.FreshRowsRequested(ctx) {
		c.metrics.RecordCacheLookup(ctx, schema.ID, telemetry.OutcomeCacheBypass)
		if err := c.Invalidate(ctx, schema.ID); err != nil {
			log.Warn("row cache invalidation failed", zap.String("entity", schema.ID), zap.Error(err))
		}
	} else {
		raw, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("row cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			res, decErr := decodeCached(raw)
			if decErr == nil {
				c.metrics.RecordCacheLookup(ctx, schema.ID, telemetry.OutcomeCacheHit)
				telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
				return res, nil
			}
			log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(decErr))
		}
		c.metrics.RecordCacheLookup(ctx, schema.ID, telemetry.OutcomeCacheMiss)
	}

	res, err := c.next.FetchRows(ctx, schema, scope)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)

	if raw, encErr := encodeCached(res); encErr != nil {
		log.Warn("row cache encode failed", zap.String("key", key), zap.Error(encErr))
	} else if setErr := c.cache.Set(ctx, key, raw, c.ttl); setErr != nil {
		log.Warn("row cache write failed", zap.String("key", key), zap.Error(setErr))
	}
	return res, nil
}

// Invalidate drops every cached scope of entityID
func (c *CachedSource) Invalidate(ctx context.Context, entityID string) error {
	return c.cache.DeleteEntity(ctx, entityID)
}

func encodeCached(res *report.FetchResult) ([]byte, error) {
	cr := cachedResult{Rows: make([]map[string]any, len(res.Rows)), Diagnostics: res.Diagnostics}
	for i, r := range res.Rows {
		cr.Rows[i] = r.Map()
	}
	return json.Marshal(cr)
}

func decodeCached(raw []byte) (*report.FetchResult, error) {
	var cr cachedResult
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&cr); err != nil {
		return nil, err
	}
	rows := make([]report.Row, len(cr.Rows))
	for i, m := range cr.Rows {
		rows[i] = report.NewRow(m)
	}
	return &report.FetchResult{Rows: rows, Diagnostics: cr.Diagnostics}, nil
}

var _ report.Source = (*CachedSource)(nil)
