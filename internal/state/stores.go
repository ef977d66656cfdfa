// Package state holds the per-session containers: the signed-in user, the
// cart and the wishlist. Each container subscribes to the session bus on its
// own; nothing calls one container from another.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

// UserStore holds who is signed in to the session.
type UserStore struct {
	mu    sync.RWMutex
	state entity.UserState
}

func NewUserStore() *UserStore {
	return &UserStore{state: entity.InitialUserState()}
}

// Handle is the bus handler.
func (s *UserStore) Handle(ctx context.Context, e entity.Event) error {
	switch e.(type) {
	case entity.UserSignedIn, entity.UserProfileUpdated, entity.UserSignedOut:
	default:
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.Reduce(e)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *UserStore) State() entity.UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

const cartStreamType = "cart"

// CartStore holds the session cart. With a journal every accepted event is
// appended before it is applied, so the cart can be rebuilt after a restart.
// Resets are the exception: they always apply.
type CartStore struct {
	mu      sync.RWMutex
	agg     *entity.CartAggregate
	journal repository.EventStore
}

// NewCartStore creates an empty cart for sessionID. journal may be nil.
func NewCartStore(sessionID string, journal repository.EventStore) *CartStore {
	return &CartStore{agg: entity.NewCartAggregate(sessionID), journal: journal}
}

// Restore replays the journal of the session, if any. It reports whether
// any event was found.
func (s *CartStore) Restore(ctx context.Context) (bool, error) {
	if s.journal == nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.journal.LoadEvents(ctx, s.agg.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load cart history: %w", err)
	}
	agg := entity.NewCartAggregate(s.agg.ID)
	if err := agg.Rehydrate(records); err != nil {
		return false, fmt.Errorf("failed to rehydrate cart aggregate: %w", err)
	}
	s.agg = agg
	return len(records) > 0, nil
}

// Dispatch applies a cart event. Rejected events change nothing.
func (s *CartStore) Dispatch(ctx context.Context, e entity.Event) (entity.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.agg.State.Reduce(e); err != nil {
		return s.agg.State, err
	}
	if resetsCart(e) {
		err := s.reset(ctx, e)
		return s.agg.State, err
	}
	if s.journal != nil {
		err := s.journal.SaveEvents(ctx, s.agg.ID, cartStreamType, s.agg.GetVersion(), []entity.Event{e})
		if err != nil {
			return s.agg.State, fmt.Errorf("failed to save %s event: %w", e.EventType(), err)
		}
	}
	if err := s.agg.ApplyEvent(e); err != nil {
		return s.agg.State, err
	}
	return s.agg.State, nil
}

func resetsCart(e entity.Event) bool {
	switch e.(type) {
	case entity.UserSignedOut, entity.CartCleared:
		return true
	}
	return false
}

// reset empties the cart whatever the journal does. When the reset cannot be
// journaled the stream is dropped instead, so a resume never replays the old
// cart. Only a failure to drop the stream is returned.
func (s *CartStore) reset(ctx context.Context, e entity.Event) error {
	if s.journal == nil {
		return s.agg.ApplyEvent(e)
	}
	err := s.journal.SaveEvents(ctx, s.agg.ID, cartStreamType, s.agg.GetVersion(), []entity.Event{e})
	if err == nil {
		return s.agg.ApplyEvent(e)
	}
	slog.Warn("Failed to journal cart reset, dropping the stream", "session_id", s.agg.ID, "event_type", e.EventType(), "err", err)
	if dropErr := s.journal.DeleteStream(ctx, s.agg.ID); dropErr != nil {
		// The stale stream stays; the in-memory cart is emptied regardless.
		if applyErr := s.agg.ApplyEvent(e); applyErr != nil {
			return applyErr
		}
		return fmt.Errorf("failed to drop cart journal of session %s: %w", s.agg.ID, dropErr)
	}
	s.agg = entity.NewCartAggregate(s.agg.ID)
	return nil
}

// Handle is the bus handler; the cart only reacts to sign-out.
func (s *CartStore) Handle(ctx context.Context, e entity.Event) error {
	if _, ok := e.(entity.UserSignedOut); !ok {
		return nil
	}
	_, err := s.Dispatch(ctx, e)
	return err
}

func (s *CartStore) State() entity.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg.State
}

// WishlistStore holds the local wishlist. Its generation changes on every
// sign-in and sign-out; results of remote calls started under an older
// generation are dropped.
type WishlistStore struct {
	mu         sync.RWMutex
	state      entity.WishlistState
	generation uint64
}

func NewWishlistStore() *WishlistStore {
	return &WishlistStore{}
}

// Handle is the bus handler.
func (s *WishlistStore) Handle(ctx context.Context, e entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch e.(type) {
	case entity.UserSignedIn:
		s.generation++
		s.state = entity.WishlistState{}
	case entity.UserSignedOut:
		s.generation++
		next, err := s.state.Reduce(e)
		if err != nil {
			return err
		}
		s.state = next
	}
	return nil
}

// Generation returns the current generation.
func (s *WishlistStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// ApplyIf applies e only while the generation is still gen.
func (s *WishlistStore) ApplyIf(gen uint64, e entity.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		slog.Debug("Dropping stale wishlist update", "event_type", e.EventType(), "generation", gen, "current", s.generation)
		return false, nil
	}
	next, err := s.state.Reduce(e)
	if err != nil {
		return false, err
	}
	s.state = next
	return true, nil
}

func (s *WishlistStore) State() entity.WishlistState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.WishlistState{Items: append([]entity.WishlistItem(nil), s.state.Items...)}
}

// Contains is the synchronous, local-only membership check.
func (s *WishlistStore) Contains(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Contains(productID)
}
