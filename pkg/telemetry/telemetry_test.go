package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupDisabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Enabled: false, Endpoint: "http://127.0.0.1:4318"},
		{Enabled: true},
	} {
		tp, shutdown, err := Setup(context.Background(), cfg, "layer-flow")
		require.NoError(t, err)
		require.NotNil(t, tp)
		_, isSDK := tp.(*sdktrace.TracerProvider)
		assert.False(t, isSDK)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestSetupEnabled(t *testing.T) {
	// Registers a global provider.
	tp, shutdown, err := Setup(context.Background(), Config{
		Enabled:     true,
		Endpoint:    "http://127.0.0.1:4318",
		SampleRatio: 1,
	}, "layer-flow")
	require.NoError(t, err)

	_, isSDK := tp.(*sdktrace.TracerProvider)
	assert.True(t, isSDK)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Export fails fast against a cancelled context; only the call matters.
	_ = shutdown(ctx)
}

func TestSampler(t *testing.T) {
	t.Parallel()

	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
