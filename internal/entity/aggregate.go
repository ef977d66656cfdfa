package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventStoreRecord represents an event stored in a journal stream.
type EventStoreRecord struct {
	ID         string    `json:"id"`
	StreamID   string    `json:"stream_id"`
	StreamType string    `json:"stream_type"`
	Version    int       `json:"version"`
	EventType  string    `json:"event_type"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// Event represents a domain event. Session state containers treat events as
// reducer actions.
type Event interface {
	EventType() string
}

// Aggregate represents a domain aggregate root.
type Aggregate interface {
	GetAggregateID() string
	GetVersion() int
	ApplyEvent(event Event) error
}

// AggregateBase provides a basic implementation for an aggregate.
type AggregateBase struct {
	ID      string
	Version int
}

func (a *AggregateBase) GetAggregateID() string {
	return a.ID
}

func (a *AggregateBase) GetVersion() int {
	return a.Version
}

var eventFactories = map[string]func() Event{
	"ItemAddedToCart":         func() Event { return &ItemAddedToCart{} },
	"CartItemQuantityUpdated": func() Event { return &CartItemQuantityUpdated{} },
	"ItemRemovedFromCart":     func() Event { return &ItemRemovedFromCart{} },
	"PurchasedItemsRemoved":   func() Event { return &PurchasedItemsRemoved{} },
	"CouponApplied":           func() Event { return &CouponApplied{} },
	"CouponRemoved":           func() Event { return &CouponRemoved{} },
	"CartCleared":             func() Event { return &CartCleared{} },
	"WishlistLoaded":          func() Event { return &WishlistLoaded{} },
	"WishlistItemAdded":       func() Event { return &WishlistItemAdded{} },
	"WishlistItemRemoved":     func() Event { return &WishlistItemRemoved{} },
	"WishlistCleared":         func() Event { return &WishlistCleared{} },
	"UserSignedIn":            func() Event { return &UserSignedIn{} },
	"UserProfileUpdated":      func() Event { return &UserProfileUpdated{} },
	"UserSignedOut":           func() Event { return &UserSignedOut{} },
	"OrderPlaced":             func() Event { return &OrderPlaced{} },
	"ReviewMirrorFailed":      func() Event { return &ReviewMirrorFailed{} },
}

// DecodeEvent rebuilds a typed event from its type name and JSON payload.
// The returned value is the event struct itself, not a pointer.
func DecodeEvent(eventType string, payload []byte) (Event, error) {
	factory, ok := eventFactories[eventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	ptr := factory()
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, ptr); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
	}
	return deref(ptr), nil
}

func deref(e Event) Event {
	switch e := e.(type) {
	case *ItemAddedToCart:
		return *e
	case *CartItemQuantityUpdated:
		return *e
	case *ItemRemovedFromCart:
		return *e
	case *PurchasedItemsRemoved:
		return *e
	case *CouponApplied:
		return *e
	case *CouponRemoved:
		return *e
	case *CartCleared:
		return *e
	case *WishlistLoaded:
		return *e
	case *WishlistItemAdded:
		return *e
	case *WishlistItemRemoved:
		return *e
	case *WishlistCleared:
		return *e
	case *UserSignedIn:
		return *e
	case *UserProfileUpdated:
		return *e
	case *UserSignedOut:
		return *e
	case *OrderPlaced:
		return *e
	case *ReviewMirrorFailed:
		return *e
	}
	return e
}

// rehydrate replays journal records through apply in order.
func rehydrate(records []EventStoreRecord, apply func(Event) error) error {
	for _, rec := range records {
		e, err := DecodeEvent(rec.EventType, rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to decode event from stream %s: %w", rec.StreamID, err)
		}
		if err := apply(e); err != nil {
			return fmt.Errorf("failed to apply event from stream: %w", err)
		}
	}
	return nil
}
