package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/appdotbuilder/school-management-app/internal/event"

	"github.com/IBM/sarama"
)

// Producer publishes domain events to a single Kafka topic keyed by event type.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return NewWithSyncProducer(producer, topic, logger), nil
}

// NewWithSyncProducer wraps an existing sarama producer (useful for testing)
func NewWithSyncProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

func (p *Producer) Publish(ctx context.Context, e event.Event) error {
	valueBytes, err := json.Marshal(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal event", "type", e.Type, "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.Type),
		Value: sarama.ByteEncoder(valueBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(e.ID)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to send event to kafka", "type", e.Type, "error", err)
		return err
	}

	p.logger.DebugContext(ctx, "event sent to kafka", "topic", p.topic, "partition", partition, "offset", offset, "type", e.Type)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
