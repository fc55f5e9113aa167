package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"registration-service/internal/config"
	"registration-service/internal/metrics"
)

const (
	DriverNone  = "none"
	DriverNATS  = "nats"
	DriverKafka = "kafka"
)

// StudentRegistered is emitted once a registration has been committed.
type StudentRegistered struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Degree       string    `json:"degree"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Publisher delivers registration events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event StudentRegistered) error
	Close() error
}

// New builds the publisher selected by cfg.Driver.
func New(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) (Publisher, error) {
	switch cfg.Driver {
	case DriverNone, "":
		return Noop{}, nil
	case DriverNATS:
		return NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
	case DriverKafka:
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, StudentRegistered) error { return nil }

func (Noop) Close() error { return nil }
