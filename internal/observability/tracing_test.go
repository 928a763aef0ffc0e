package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "noop", attribute.Int("n", 1))
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestInitTracingStdout(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{
		Enabled:      true,
		Exporter:     "stdout",
		SamplerRatio: 1,
		Environment:  "test",
	})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "unit")
	assert.True(t, span.SpanContext().IsValid())
	EndSpan(span, nil)

	assert.NoError(t, shutdown(context.Background()))
}
