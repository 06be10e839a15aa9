package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Enabled: false, CollectorEndpoint: "localhost:14317", SamplingRatio: 1, ServiceName: "test-service"}

	tp, err := NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, cfg, tp.GetConfig())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.EnableSpanProfiles())
	assert.False(t, tp.IsSpanProfilesEnabled())
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestStartSpan(t *testing.T) {
	recorder := withRecorder(t)

	t.Run("records name and attributes", func(t *testing.T) {
		ctx, span := StartServiceSpan(context.Background(), "source", "fetch",
			WithAttribute(SpanAttrEntity, "fac_teach"),
			WithAttribute(SpanAttrRowCount, 3),
		)
		assert.NotEmpty(t, GetTraceID(ctx))
		assert.NotEmpty(t, GetSpanID(ctx))
		SetAttributes(span, SpanAttrScope, "CS", "ignored")
		AddEvent(span, "retry", SpanAttrAttempt, 2)
		span.End()

		ended := recorder.Ended()
		require.NotEmpty(t, ended)
		got := ended[len(ended)-1]
		assert.Equal(t, "source.fetch", got.Name())

		attrs := map[string]string{}
		for _, kv := range got.Attributes() {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
		assert.Equal(t, "fac_teach", attrs[SpanAttrEntity])
		assert.Equal(t, "3", attrs[SpanAttrRowCount])
		assert.Equal(t, "CS", attrs[SpanAttrScope])
		require.Len(t, got.Events(), 1)
		assert.Equal(t, "retry", got.Events()[0].Name)
	})

	t.Run("record error marks the span failed", func(t *testing.T) {
		_, span := StartSpan(context.Background(), "export")
		RecordError(span, errors.New("boom"))
		RecordError(span, nil)
		span.End()

		ended := recorder.Ended()
		got := ended[len(ended)-1]
		assert.Equal(t, codes.Error, got.Status().Code)
		assert.Equal(t, "boom", got.Status().Description)
	})

	t.Run("ids are empty without a span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})
}
