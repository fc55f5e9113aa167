package telemetry_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"registration-service/internal/config"
	"registration-service/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tel, err := telemetry.Init(context.Background(), config.TelemetryConfig{}, "registration-service", "test", "local", logger)
	require.NoError(t, err)

	assert.Nil(t, tel.MeterProvider)
	require.NotNil(t, tel.Metrics)
	assert.NotPanics(t, func() { tel.Metrics.RecordStudentRegistration(context.Background()) })
	assert.NoError(t, tel.Shutdown(context.Background(), logger))
}
