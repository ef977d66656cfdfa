package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kareempogba0/B-Laban/internal/entity"
)

// EventStore is an in-memory journal with the same optimistic concurrency
// check as the Postgres one.
type EventStore struct {
	hooks

	mu      sync.Mutex
	streams map[string][]entity.EventStoreRecord
}

func NewEventStore() *EventStore {
	return &EventStore{streams: make(map[string][]entity.EventStoreRecord)}
}

func (s *EventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if err := s.enter("SaveEvents"); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := len(s.streams[streamID])
	if current != expectedVersion {
		return fmt.Errorf("concurrency exception: expected version %d, got %d", expectedVersion, current)
	}
	now := time.Now()
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", e.EventType(), err)
		}
		current++
		s.streams[streamID] = append(s.streams[streamID], entity.EventStoreRecord{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			StreamType: streamType,
			Version:    current,
			EventType:  e.EventType(),
			Payload:    payload,
			CreatedAt:  now,
		})
	}
	return nil
}

func (s *EventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	if err := s.enter("LoadEvents"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.EventStoreRecord(nil), s.streams[streamID]...), nil
}

func (s *EventStore) DeleteStream(ctx context.Context, streamID string) error {
	if err := s.enter("DeleteStream"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streams, streamID)
	return nil
}
