package source

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingSource struct {
	calls int
	res   *report.FetchResult
	err   error
}

func (s *countingSource) FetchRows(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) (*report.FetchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func TestCachedSource(t *testing.T) {
	schema := teachSchema(t)
	ctx := context.Background()
	result := &report.FetchResult{
		Rows: []report.Row{
			report.NewRow(map[string]any{"faculty_name": "Asha", "fromDate": "2020-06-01", "toDate": nil}),
			report.NewRow(map[string]any{"faculty_name": "Ravi", "Designation": json.Number("0")}),
		},
		Diagnostics: []report.Diagnostic{{Kind: report.DiagMissing, Key: "toDate", Count: 1, FirstRow: 1}},
	}

	newCached := func(t *testing.T, next report.Source) (*CachedSource, *cache.InMemoryRowCache) {
		rc := cache.NewInMemoryRowCache(time.Hour)
		t.Cleanup(func() { _ = rc.Close() })
		return NewCachedSource(next, rc, time.Minute, zaptest.NewLogger(t), nil), rc
	}

	t.Run("second fetch is served from cache with identical rows", func(t *testing.T) {
		next := &countingSource{res: result}
		cs, _ := newCached(t, next)

		first, err := cs.FetchRows(ctx, schema, report.UnitSet("CS"))
		require.NoError(t, err)
		second, err := cs.FetchRows(ctx, schema, report.UnitSet("CS"))
		require.NoError(t, err)

		assert.Equal(t, 1, next.calls)
		assert.Equal(t, first.Diagnostics, second.Diagnostics)
		require.Len(t, second.Rows, 2)
		assert.Equal(t, first.Rows[0].Map(), second.Rows[0].Map())
		assert.Equal(t, json.Number("0"), second.Rows[1].Value("Designation"))
	})

	t.Run("scopes are cached separately", func(t *testing.T) {
		next := &countingSource{res: result}
		cs, _ := newCached(t, next)

		_, _ = cs.FetchRows(ctx, schema, report.UnitSet("CS"))
		_, _ = cs.FetchRows(ctx, schema, report.AllUnits())
		assert.Equal(t, 2, next.calls)
	})

	t.Run("bypass refetches and refreshes the entry", func(t *testing.T) {
		next := &countingSource{res: result}
		cs, _ := newCached(t, next)

		_, _ = cs.FetchRows(ctx, schema, report.AllUnits())
		_, _ = cs.FetchRows(report.WithFreshRows(ctx), schema, report.AllUnits())
		_, _ = cs.FetchRows(ctx, schema, report.AllUnits())
		assert.Equal(t, 2, next.calls)
	})

	t.Run("bypass drops the entity's other scopes", func(t *testing.T) {
		next := &countingSource{res: result}
		cs, rc := newCached(t, next)

		_, _ = cs.FetchRows(ctx, schema, report.UnitSet("CS"))
		_, _ = cs.FetchRows(ctx, schema, report.UnitSet("EC"))
		require.Equal(t, 2, rc.Size())

		_, _ = cs.FetchRows(report.WithFreshRows(ctx), schema, report.UnitSet("CS"))
		assert.Equal(t, 1, rc.Size())
		_, _ = cs.FetchRows(ctx, schema, report.UnitSet("EC"))
		assert.Equal(t, 4, next.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &countingSource{err: shared.ErrSourceUnavailable}
		cs, rc := newCached(t, next)

		_, err := cs.FetchRows(ctx, schema, report.AllUnits())
		assert.ErrorIs(t, err, shared.ErrSourceUnavailable)
		assert.Equal(t, 0, rc.Size())
	})

	t.Run("invalidate drops the entity", func(t *testing.T) {
		next := &countingSource{res: result}
		cs, rc := newCached(t, next)

		_, _ = cs.FetchRows(ctx, schema, report.AllUnits())
		require.NoError(t, cs.Invalidate(ctx, schema.ID))
		assert.Equal(t, 0, rc.Size())
	})

	t.Run("broken cache degrades to direct fetch", func(t *testing.T) {
		next := &countingSource{res: result}
		rc := cache.NewInMemoryRowCache(time.Hour)
		require.NoError(t, rc.Close())
		cs := NewCachedSource(next, rc, time.Minute, nil, nil)

		res, err := cs.FetchRows(ctx, schema, report.AllUnits())
		require.NoError(t, err)
		assert.Len(t, res.Rows, 2)
	})

	t.Run("empty scope passes through", func(t *testing.T) {
		next := &countingSource{err: errors.New("rejected")}
		cs, _ := newCached(t, next)
		_, err := cs.FetchRows(ctx, schema, report.UnitScope{})
		assert.EqualError(t, err, "rejected")
	})
}
