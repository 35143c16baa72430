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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := Config{ServiceName: "bakery-test", CollectorEndpoint: "localhost:14317"}

	tp, err := NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	tp.EnableSpanProfiles()
	assert.False(t, tp.SpanProfilesEnabled())
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("bakery"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.Same(t, logger, Bridge(logger, lp))
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(ProfilerConfig{}, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "bakery"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestStartServiceSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartServiceSpan(context.Background(), "inventory", "deduct_for_order",
		WithAttribute(SpanAttrOrderID, "0b6f"))
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.NotEmpty(t, GetSpanID(ctx))
	SetAttributes(span, SpanAttrLines, 3, 42, "ignored", SpanAttrOutcome, "APPLIED")
	AddEvent(span, "claimed", "attempt", int64(1))
	RecordError(span, errors.New("insufficient stock"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "inventory.deduct_for_order", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "insufficient stock", got.Status().Description)

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "0b6f", attrs[SpanAttrOrderID])
	assert.Equal(t, "3", attrs[SpanAttrLines])
	assert.Equal(t, "APPLIED", attrs[SpanAttrOutcome])
	assert.Len(t, attrs, 3)
	require.Len(t, got.Events(), 2)
	assert.Equal(t, "claimed", got.Events()[0].Name)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

func TestSanitizeLabels(t *testing.T) {
	long := make([]byte, MaxLabelValueLength+10)
	for i := range long {
		long[i] = 'x'
	}
	got := sanitizeLabels(map[string]string{
		"Route":      "/api/v1/orders/:id",
		"order_id":   "c0ffee",
		"Controller": "OrderHandler",
		"empty":      "",
		"big-value":  string(long),
	})
	assert.Equal(t, []string{
		"big_value", string(long[:MaxLabelValueLength]),
		"controller", "OrderHandler",
		"route", "/api/v1/orders/:id",
	}, got)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels_RunsFn(t *testing.T) {
	ran := 0
	WithProfilingLabels(context.Background(), HTTPRequestLabels("OrderHandler", "/api/v1/orders", "POST"), func(context.Context) { ran++ })
	WithProfilingLabels(context.Background(), nil, func(context.Context) { ran++ })
	assert.Equal(t, 2, ran)

	labels := OperationLabels("stock_deduction", map[string]string{ProfilingLabelRegion: "db"})
	assert.Equal(t, "stock_deduction", labels[ProfilingLabelOperation])
	assert.Equal(t, "db", labels[ProfilingLabelRegion])
}
