package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// KafkaEventPublisher publishes events to Kafka for external consumers
// (notification service, analytics). Enabled when brokers are
// configured.
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    logger,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Source == "" {
		event.Source = Source
	}
	if event.Version == "" {
		event.Version = Version
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.Type)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event to Kafka: %w", err)
	}

	p.logger.Debug("event published to Kafka",
		"topic", topic,
		"event_type", event.Type,
		"event_id", event.ID)

	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// FanoutPublisher publishes every event to all wrapped publishers. Used
// to keep the in-process bus fed while also shipping to Kafka.
type FanoutPublisher struct {
	publishers []EventPublisher
}

func NewFanoutPublisher(publishers ...EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

func (p *FanoutPublisher) Publish(ctx context.Context, topic string, event *Event) error {
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, topic, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *FanoutPublisher) Close() error {
	var firstErr error
	for _, pub := range p.publishers {
		if err := pub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
