package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"registration-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNewWithWriter_JSONAddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "prod")

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.InfoContext(ctx, "student registered", "id", 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "student registered", record["msg"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", record["span_id"])
}

func TestNewWithWriter_TextColorsErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "local")

	log.Debug("debug enabled locally")
	log.Error("storage failure", "error", "boom")

	out := buf.String()
	assert.Contains(t, out, "debug enabled locally")
	assert.Contains(t, out, "storage failure")
	assert.Contains(t, out, "[31m")
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, out, "trace_id")
}
