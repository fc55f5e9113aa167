package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"registration-service/internal/metrics"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewNATSPublisher(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("registration-service"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	if m == nil {
		m = metrics.NewMock()
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event StudentRegistered) error {
	start := time.Now()
	err := p.publish(event)
	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)
	return err
}

func (p *NATSPublisher) publish(event StudentRegistered) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}

	p.logger.Info("event sent to NATS", "subject", p.subject, "student_id", event.ID)
	return nil
}

func (p *NATSPublisher) Close() error {
	// Drain flushes pending publishes before closing
	return p.conn.Drain()
}
