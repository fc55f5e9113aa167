package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Rejection reasons recorded on registration_service.registrations.rejected.
const (
	ReasonValidation     = "validation"
	ReasonDuplicateEmail = "duplicate_email"
	ReasonDuplicateCNIC  = "duplicate_cnic"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics
	Health    *HealthMetrics
	Runtime   *RuntimeMetrics

	studentsRegistered    metric.Int64Counter
	registrationsRejected metric.Int64Counter
	studentsViewed        metric.Int64Counter
	studentsListViewed    metric.Int64Counter
}

func New(serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)
	m := &Metrics{}

	var err error

	if m.Database, err = NewDatabaseMetrics(meter); err != nil {
		return nil, err
	}
	if m.Messaging, err = NewMessagingMetrics(meter); err != nil {
		return nil, err
	}
	if m.Health, err = NewHealthMetrics(meter); err != nil {
		return nil, err
	}
	if m.Runtime, err = NewRuntimeMetrics(meter); err != nil {
		return nil, err
	}

	m.studentsRegistered, err = meter.Int64Counter(
		"registration_service.students.registered",
		metric.WithDescription("Total number of students registered"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.registrationsRejected, err = meter.Int64Counter(
		"registration_service.registrations.rejected",
		metric.WithDescription("Registrations rejected before reaching storage"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsViewed, err = meter.Int64Counter(
		"registration_service.students.viewed",
		metric.WithDescription("Total number of students viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsListViewed, err = meter.Int64Counter(
		"registration_service.students.list_viewed",
		metric.WithDescription("Total number of times the students list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")
	return m, nil
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{
		Database:  &DatabaseMetrics{},
		Messaging: &MessagingMetrics{},
		Health:    &HealthMetrics{dependencies: make(map[string]*DependencyStatus)},
		Runtime:   &RuntimeMetrics{},
	}
}

func (m *Metrics) RecordStudentRegistration(ctx context.Context) {
	if m != nil && m.studentsRegistered != nil {
		m.studentsRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRegistrationRejected(ctx context.Context, reason string) {
	if m != nil && m.registrationsRejected != nil {
		m.registrationsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) RecordStudentViewed(ctx context.Context) {
	if m != nil && m.studentsViewed != nil {
		m.studentsViewed.Add(ctx, 1)
	}
}

func (m *Metrics) RecordStudentsListViewed(ctx context.Context) {
	if m != nil && m.studentsListViewed != nil {
		m.studentsListViewed.Add(ctx, 1)
	}
}
