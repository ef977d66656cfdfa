package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
)

type kafkaBroker struct {
	brokers []string

	mu      sync.Mutex
	writers map[string]*kafkaGo.Writer
}

// NewKafkaBroker creates a new Kafka publisher and subscriber. Events travel
// as JSON with their type in the event_type header.
func NewKafkaBroker(brokers []string) (messaging.Publisher, messaging.Subscriber) {
	kb := &kafkaBroker{brokers: brokers, writers: make(map[string]*kafkaGo.Writer)}
	return kb, kb
}

func (k *kafkaBroker) writer(topic string) *kafkaGo.Writer {
	k.mu.Lock()
	defer k.mu.Unlock()
	w, ok := k.writers[topic]
	if !ok {
		w = &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(k.brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.Hash{},
			AllowAutoTopicCreation: true,
		}
		k.writers[topic] = w
	}
	return w
}

func (k *kafkaBroker) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = k.writer(topic).WriteMessages(ctx, kafkaGo.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafkaGo.Header{{Key: messaging.MetadataEventType, Value: []byte(event.EventType())}},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.EventType(), topic, err)
	}
	return nil
}

func (k *kafkaBroker) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	var errs []error
	for topic, w := range k.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close writer for %s: %w", topic, err))
		}
	}
	k.writers = make(map[string]*kafkaGo.Writer)
	return errors.Join(errs...)
}

func (k *kafkaBroker) Consume(ctx context.Context, topic string, groupID string, handler messaging.Handler) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Consumer shutting down", "topic", topic)
				return
			}
			slog.Error("Error reading message", "topic", topic, "err", err)
			continue
		}

		event, err := entity.DecodeEvent(eventType(msg), msg.Value)
		if err != nil {
			slog.Error("Skipping undecodable message", "topic", topic, "offset", msg.Offset, "err", err)
			continue
		}
		if err := handler(ctx, event); err != nil {
			slog.Error("Error handling message", "topic", topic, "event_type", event.EventType(), "err", err)
		}
	}
}

func eventType(msg kafkaGo.Message) string {
	for _, h := range msg.Headers {
		if h.Key == messaging.MetadataEventType {
			return string(h.Value)
		}
	}
	return ""
}
