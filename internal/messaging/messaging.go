package messaging

import (
	"context"

	"github.com/kareempogba0/B-Laban/internal/entity"
)

// Topics of domain events leaving the process.
const (
	TopicOrdersPlaced       = "orders.placed"
	TopicReviewMirrorFailed = "reviews.mirror_failed"
)

// MetadataEventType carries the event type name next to each payload.
const MetadataEventType = "event_type"

// SessionTopic is the bus topic of one storefront session.
func SessionTopic(sessionID string) string {
	return "session." + sessionID
}

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error
	Close() error
}

// Handler processes one decoded event. A returned error is logged; it never
// stops delivery.
type Handler func(ctx context.Context, event entity.Event) error

// Subscriber defines an interface for subscribing to a message topic.
// Consume blocks until ctx is done.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler Handler)
}

// Bus is the in-process session bus. Publish returns once every subscriber
// of the topic has handled the event; Subscribe returns once the handler is
// registered and keeps delivering until ctx is done.
type Bus interface {
	Publisher
	Subscriber
	Subscribe(ctx context.Context, topic string, handler Handler) error
}
