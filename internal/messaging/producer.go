package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/appdotbuilder/school-management-app/internal/event"

	"github.com/nats-io/nats.go"
)

// Producer publishes domain events to NATS, one subject per event type:
// <prefix>.<event type>, e.g. school.student.deleted.
type Producer struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

func NewProducer(url string, prefix string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url, nats.Name("school-service"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject_prefix", prefix)

	return &Producer{
		conn:   nc,
		prefix: prefix,
		logger: logger,
	}, nil
}

// Subject returns the NATS subject an event type is published on.
func (p *Producer) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *Producer) Publish(ctx context.Context, e event.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "type", e.Type, "error", err)
		return err
	}

	subject := p.Subject(e.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to NATS", "subject", subject, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event sent to NATS", "subject", subject, "event_id", e.ID)
	return nil
}

// HealthCheck verifies NATS connection is healthy
func (p *Producer) HealthCheck() error {
	if p.conn == nil {
		return nats.ErrConnectionClosed
	}
	if !p.conn.IsConnected() {
		return nats.ErrDisconnected
	}
	return nil
}

func (p *Producer) Close() error {
	// flush buffered publishes before closing
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}
