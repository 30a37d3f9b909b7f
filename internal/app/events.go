package app

import (
	"context"
	"log/slog"

	"github.com/appdotbuilder/school-management-app/internal/config"
	"github.com/appdotbuilder/school-management-app/internal/event"
	"github.com/appdotbuilder/school-management-app/internal/health"
	"github.com/appdotbuilder/school-management-app/internal/kafka"
	"github.com/appdotbuilder/school-management-app/internal/messaging"
)

// newPublisher connects the configured broker. A broker that cannot be reached is
// logged and replaced by a no-op publisher; records are still written.
func newPublisher(cfg config.MessagingConfig, logger *slog.Logger) (event.Publisher, health.Check) {
	switch cfg.Broker {
	case "nats":
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.SubjectPrefix, logger)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
			return event.Nop{}, nil
		}
		return producer, func(context.Context) error { return producer.HealthCheck() }
	case "kafka":
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("failed to initialize Kafka producer", "error", err)
			return event.Nop{}, nil
		}
		return producer, nil
	case "", "none":
		logger.Info("event publishing disabled")
		return event.Nop{}, nil
	default:
		logger.Warn("unknown broker, event publishing disabled", "broker", cfg.Broker)
		return event.Nop{}, nil
	}
}
