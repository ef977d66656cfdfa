package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

// Session is one shopper's browsing session.
type Session struct {
	ID        string
	CreatedAt time.Time

	User     *UserStore
	Cart     *CartStore
	Wishlist *WishlistStore

	bus    messaging.Bus
	cancel context.CancelFunc

	// lastSeen is guarded by the registry's mutex.
	lastSeen time.Time
}

// Publish sends e to every container of the session and returns once all
// of them handled it.
func (s *Session) Publish(ctx context.Context, e entity.Event) error {
	return s.bus.PublishEvent(ctx, messaging.SessionTopic(s.ID), s.ID, e)
}

// CurrentUser returns the signed-in user or apperr.ErrUnauthenticated.
func (s *Session) CurrentUser() (entity.AuthUser, error) {
	st := s.User.State()
	if st.CurrentUser == nil {
		return entity.AuthUser{}, apperr.ErrUnauthenticated
	}
	return *st.CurrentUser, nil
}

// CloseHook runs when a session ends.
type CloseHook func(ctx context.Context, sessionID string)

// Registry owns the live sessions.
type Registry struct {
	bus     messaging.Bus
	journal repository.EventStore

	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	hooks    []CloseHook
}

// NewRegistry creates a registry. journal may be nil, in which case carts
// only live as long as the process.
func NewRegistry(bus messaging.Bus, journal repository.EventStore) *Registry {
	return &Registry{bus: bus, journal: journal, now: time.Now, sessions: make(map[string]*Session)}
}

// OnClose registers hook to run for every closed session.
func (r *Registry) OnClose(hook CloseHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Create starts a new session.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	s, err := r.open(uuid.NewString())
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	s.lastSeen = r.now()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	slog.Info("Session started", "session_id", s.ID)
	return s, nil
}

// Get returns the session with id. A session unknown to this process is
// resumed when the journal holds its cart.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		s.lastSeen = r.now()
	}
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	if r.journal == nil || id == "" {
		return nil, fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}

	s, err := r.open(id)
	if err != nil {
		return nil, err
	}
	found, err := s.Cart.Restore(ctx)
	if err != nil || !found {
		s.cancel()
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		s.cancel()
		existing.lastSeen = r.now()
		return existing, nil
	}
	s.lastSeen = r.now()
	r.sessions[id] = s
	slog.Info("Session resumed from journal", "session_id", id, "cart_lines", len(s.Cart.State().Items))
	return s, nil
}

func (r *Registry) open(id string) (*Session, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		User:      NewUserStore(),
		Cart:      NewCartStore(id, r.journal),
		Wishlist:  NewWishlistStore(),
		bus:       r.bus,
		cancel:    cancel,
	}

	topic := messaging.SessionTopic(id)
	handlers := []messaging.Handler{s.User.Handle, s.Cart.Handle, s.Wishlist.Handle}
	for _, h := range handlers {
		if err := r.bus.Subscribe(ctx, topic, h); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to subscribe session %s: %w", id, err)
		}
	}
	return s, nil
}

// Close ends the session: its subscriptions stop, its cart journal and
// session-scoped cache entries are removed.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	hooks := append([]CloseHook(nil), r.hooks...)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, apperr.ErrNotFound)
	}

	s.cancel()
	for _, hook := range hooks {
		hook(ctx, id)
	}
	if r.journal != nil {
		if err := r.journal.DeleteStream(ctx, id); err != nil {
			return fmt.Errorf("failed to drop cart journal of session %s: %w", id, err)
		}
	}
	slog.Info("Session closed", "session_id", id)
	return nil
}

// Sweep closes every session not seen for idle or longer and returns how
// many were closed.
func (r *Registry) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	var expired []string
	for id, s := range r.sessions {
		if !s.lastSeen.After(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	closed := 0
	for _, id := range expired {
		if err := r.Close(ctx, id); err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				slog.Warn("Failed to close idle session", "session_id", id, "err", err)
			}
			continue
		}
		closed++
	}
	if closed > 0 {
		slog.Info("Closed idle sessions", "count", closed, "idle", idle)
	}
	return closed
}

// ExpireIdle sweeps every interval until ctx is done.
func (r *Registry) ExpireIdle(ctx context.Context, idle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx, idle)
		}
	}
}

// CloseAll stops every live session without touching the journal, so carts
// can be resumed after a restart.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.cancel()
		delete(r.sessions, id)
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
