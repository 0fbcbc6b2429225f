package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// GoChannelBus is an in-process pub/sub bus. It backs the live-update
// streams and serves as the default publisher when Kafka is not
// configured.
type GoChannelBus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

func NewGoChannelBus(logger *slog.Logger) *GoChannelBus {
	return &GoChannelBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

func (b *GoChannelBus) Publish(ctx context.Context, topic string, event *Event) error {
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

	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("event published",
		"topic", topic,
		"event_type", event.Type,
		"event_id", event.ID)

	return nil
}

// Subscribe delivers events for a topic until the context is cancelled.
func (b *GoChannelBus) Subscribe(ctx context.Context, topic string) (<-chan *Event, error) {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	out := make(chan *Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Warn("dropping malformed event", "error", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (b *GoChannelBus) Close() error {
	return b.pubSub.Close()
}
