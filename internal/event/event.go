// Package event describes the domain events emitted after record mutations and the
// publisher contract the brokers implement.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	StudentCreated     = "student.created"
	StudentUpdated     = "student.updated"
	StudentDeleted     = "student.deleted"
	SubjectCreated     = "subject.created"
	AttendanceRecorded = "attendance.recorded"
	GradeRecorded      = "grade.recorded"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(eventType string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events to a broker (NATS/Kafka)
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Emitter publishes events on behalf of services. Delivery failures are logged and
// never reach the caller: the mutation has already been committed.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewEmitter(publisher Publisher, logger *slog.Logger) *Emitter {
	if publisher == nil {
		publisher = Nop{}
	}
	return &Emitter{publisher: publisher, logger: logger}
}

func (em *Emitter) Emit(ctx context.Context, eventType string, payload any) {
	if em == nil {
		return
	}
	e := New(eventType, payload)
	if err := em.publisher.Publish(ctx, e); err != nil {
		em.logger.WarnContext(ctx, "failed to publish event", "type", eventType, "event_id", e.ID, "error", err)
	}
}
