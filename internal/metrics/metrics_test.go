package metrics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"registration-service/internal/db"
	"registration-service/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func useManualReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })
	return reader
}

func TestMetrics_RecordsCounters(t *testing.T) {
	reader := useManualReader(t)

	m, err := metrics.New("registration-service-test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordStudentRegistration(ctx)
	m.RecordStudentRegistration(ctx)
	m.RecordRegistrationRejected(ctx, metrics.ReasonDuplicateEmail)
	m.RecordStudentViewed(ctx)
	m.RecordStudentsListViewed(ctx)
	m.Database.RecordQuery(ctx, "insert", "student_form", 3*time.Millisecond, errors.New("boom"))
	m.Messaging.RecordPublish(ctx, "student.registered", time.Millisecond, nil)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["registration_service.students.registered"]))
	assert.Equal(t, int64(1), sumOf(t, got["registration_service.registrations.rejected"]))
	assert.Equal(t, int64(1), sumOf(t, got["registration_service.students.viewed"]))
	assert.Equal(t, int64(1), sumOf(t, got["registration_service.students.list_viewed"]))
	assert.Equal(t, int64(1), sumOf(t, got["db.query.errors"]))
	assert.Equal(t, int64(1), sumOf(t, got["messaging.messages.published"]))
	assert.Contains(t, got, "db.query.duration")
	assert.Contains(t, got, "runtime.go.goroutines")
	assert.Contains(t, got, "service.uptime")
}

func TestNewMock_IgnoresRecords(t *testing.T) {
	m := metrics.NewMock()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordStudentRegistration(ctx)
		m.RecordRegistrationRejected(ctx, metrics.ReasonValidation)
		m.RecordStudentViewed(ctx)
		m.RecordStudentsListViewed(ctx)
		m.Database.RecordQuery(ctx, "select", "student_form", time.Millisecond, nil)
		m.Messaging.RecordPublish(ctx, "student.registered", time.Millisecond, errors.New("down"))
		m.Health.RecordDependencyCheck(ctx, "database", time.Millisecond, nil)
	})

	var nilMetrics *metrics.Metrics
	assert.NotPanics(t, func() { nilMetrics.RecordStudentRegistration(ctx) })
}

type note struct {
	bun.BaseModel `bun:"table:notes"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Body string `bun:"body,notnull"`
}

func TestDatabaseMetrics_QueryHook(t *testing.T) {
	reader := useManualReader(t)

	m, err := metrics.New("registration-service-test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "hook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(database) })
	database.AddQueryHook(m.Database.QueryHook())
	require.NoError(t, m.Database.RegisterDB(database.DB, otel.Meter("registration-service-test")))

	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx, database, (*note)(nil)))

	_, err = database.NewInsert().Model(&note{Body: "hello"}).Exec(ctx)
	require.NoError(t, err)

	// A missing row is not a query error
	err = database.NewSelect().Model(new(note)).Where("id = ?", 99).Scan(ctx)
	require.Error(t, err)

	err = database.NewSelect().Model(new(note)).Where("missing_column = 1").Scan(ctx)
	require.Error(t, err)

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, got["db.query.errors"]))

	hist, ok := got["db.query.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var inserts uint64
	for _, dp := range hist.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key("operation"))
		table, _ := dp.Attributes.Value(attribute.Key("table"))
		if op.AsString() == "insert" && table.AsString() == "notes" {
			inserts += dp.Count
		}
	}
	assert.Equal(t, uint64(1), inserts)
	assert.Contains(t, got, "db.pool.connections")
}
