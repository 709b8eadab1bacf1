package observability_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/aelexs/dictsmoke/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTelemetry_NoEndpoint(t *testing.T) {
	tel, err := observability.InitTelemetry(context.Background(), observability.TelemetryConfig{
		ServiceName:    "dictsmoke-test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
	})

	require.NoError(t, err)
	require.NotNil(t, tel)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetry_ShutdownZeroValue(t *testing.T) {
	tel := &observability.Telemetry{}

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTraceIDFromContext(t *testing.T) {
	t.Run("no active span", func(t *testing.T) {
		assert.Empty(t, observability.TraceIDFromContext(context.Background()))
	})

	t.Run("with active span", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
		defer span.End()

		traceID := observability.TraceIDFromContext(ctx)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), traceID)
	})
}

func TestFailSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	cause := errors.New("boom")

	got := observability.FailSpan(span, cause)
	span.End()

	assert.Same(t, cause, got)
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)

	assert.NoError(t, observability.FailSpan(span, nil))
}
