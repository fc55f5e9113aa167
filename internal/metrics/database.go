package metrics

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DatabaseMetrics covers the connection pool and every query bun runs.
type DatabaseMetrics struct {
	poolConnections metric.Int64ObservableGauge
	poolMaxOpen     metric.Int64ObservableGauge
	queryDuration   metric.Float64Histogram
	queryErrors     metric.Int64Counter
}

func NewDatabaseMetrics(meter metric.Meter) (*DatabaseMetrics, error) {
	dm := &DatabaseMetrics{}

	var err error

	if dm.poolConnections, err = meter.Int64ObservableGauge(
		"db.pool.connections",
		metric.WithDescription("Database connections by state (idle, in_use)"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}

	if dm.poolMaxOpen, err = meter.Int64ObservableGauge(
		"db.pool.max_open",
		metric.WithDescription("Configured maximum of open database connections"),
		metric.WithUnit("{connection}"),
	); err != nil {
		return nil, err
	}

	// Buckets: 100µs .. 5s
	if dm.queryDuration, err = meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5),
	); err != nil {
		return nil, err
	}

	if dm.queryErrors, err = meter.Int64Counter(
		"db.query.errors",
		metric.WithDescription("Database queries that returned an error"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	return dm, nil
}

// RegisterDB starts observing the connection pool of db.
func (dm *DatabaseMetrics) RegisterDB(db *sql.DB, meter metric.Meter) error {
	if dm == nil || dm.poolConnections == nil || db == nil {
		return nil
	}

	idle := metric.WithAttributes(attribute.String("state", "idle"))
	inUse := metric.WithAttributes(attribute.String("state", "in_use"))

	_, err := meter.RegisterCallback(
		func(_ context.Context, observer metric.Observer) error {
			stats := db.Stats()
			observer.ObserveInt64(dm.poolConnections, int64(stats.Idle), idle)
			observer.ObserveInt64(dm.poolConnections, int64(stats.InUse), inUse)
			observer.ObserveInt64(dm.poolMaxOpen, int64(stats.MaxOpenConnections))
			return nil
		},
		dm.poolConnections,
		dm.poolMaxOpen,
	)
	return err
}

// RecordQuery records one query. sql.ErrNoRows is a normal outcome and is
// not counted as an error.
func (dm *DatabaseMetrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if dm == nil || dm.queryDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("table", table),
	)

	dm.queryDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		dm.queryErrors.Add(ctx, 1, attrs)
	}
}

// QueryHook returns a bun hook that records every query, including queries
// run inside transactions.
func (dm *DatabaseMetrics) QueryHook() bun.QueryHook {
	return queryHook{metrics: dm}
}

type queryHook struct {
	metrics *DatabaseMetrics
}

var _ bun.QueryHook = queryHook{}

func (h queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h queryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	table := ""
	if event.IQuery != nil {
		table = event.IQuery.GetTableName()
	}
	h.metrics.RecordQuery(ctx, strings.ToLower(event.Operation()), table, time.Since(event.StartTime), event.Err)
}
