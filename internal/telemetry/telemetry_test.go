package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "gatefix", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	tracer = nil
	enabled = false

	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartSessionSpan(t *testing.T) {
	ctx := context.Background()
	_, span := StartSessionSpan(ctx, SpanSessionHandshake, 7, "FIX")
	require.NotNil(t, span)
	span.End()
}

func TestRecordErrorIsNilSafe(t *testing.T) {
	ctx := context.Background()
	RecordError(ctx, nil)
	RecordError(ctx, errors.New("boom"))
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()
	SetAttributes(ctx, SessionID(1), SessionState("ESTABLISHED"))
}

func TestRecordErrorSetsStatus(t *testing.T) {
	ctx := context.Background()
	ctx, span := StartSpan(ctx, "failing.op")
	defer span.End()
	RecordError(ctx, errors.New("kaboom"))
	_ = codes.Error
}
