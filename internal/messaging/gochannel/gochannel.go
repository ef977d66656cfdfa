// Package gochannel is the in-process session bus, built on Watermill's Go
// channel Pub/Sub with publishing blocked until every subscriber acked.
package gochannel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
)

type bus struct {
	pubSub *gochannel.GoChannel
}

// NewBus creates a session bus. Handlers must not publish or subscribe on
// the bus themselves: Publish holds the topic until they return.
func NewBus(logger *slog.Logger) messaging.Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewSlogLogger(logger),
	)
	return &bus{pubSub: pubSub}
}

// PublishEvent publishes event on topic; key is ignored in process.
func (b *bus) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(messaging.MetadataEventType, event.EventType())
	msg.SetContext(ctx)

	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), topic, err)
	}
	return nil
}

func (b *bus) Subscribe(ctx context.Context, topic string, handler messaging.Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	go func() {
		for msg := range messages {
			b.handle(topic, msg, handler)
		}
	}()
	return nil
}

// handle always acks: a nacked message would be redelivered forever.
func (b *bus) handle(topic string, msg *message.Message, handler messaging.Handler) {
	defer msg.Ack()

	eventType := msg.Metadata.Get(messaging.MetadataEventType)
	event, err := entity.DecodeEvent(eventType, msg.Payload)
	if err != nil {
		slog.Error("Skipping undecodable message", "topic", topic, "message_uuid", msg.UUID, "err", err)
		return
	}
	if err := handler(msg.Context(), event); err != nil {
		slog.Error("Error handling message", "topic", topic, "event_type", eventType, "err", err)
	}
}

func (b *bus) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	if err := b.Subscribe(ctx, topic, handler); err != nil {
		slog.Error("Failed to start consumer", "topic", topic, "group_id", groupID, "err", err)
		return
	}
	<-ctx.Done()
	slog.Info("Consumer shutting down", "topic", topic)
}

func (b *bus) Close() error {
	return b.pubSub.Close()
}
