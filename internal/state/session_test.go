package state

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging/gochannel"
	"github.com/kareempogba0/B-Laban/internal/repository/memory"
)

func newRegistry(t *testing.T, journal *memory.EventStore) *Registry {
	t.Helper()
	bus := gochannel.NewBus(slog.Default())
	t.Cleanup(func() { _ = bus.Close() })
	if journal == nil {
		r := NewRegistry(bus, nil)
		t.Cleanup(r.CloseAll)
		return r
	}
	r := NewRegistry(bus, journal)
	t.Cleanup(r.CloseAll)
	return r
}

func signIn(t *testing.T, s *Session, uid string) {
	t.Helper()
	err := s.Publish(context.Background(), entity.UserSignedIn{User: entity.FullUser{
		User: entity.AuthUser{UID: uid, Email: uid + "@example.com"},
		Name: uid,
	}})
	require.NoError(t, err)
}

func TestRegistry_CreateGetClose(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, nil)

	s, err := r.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	var closed []string
	r.OnClose(func(ctx context.Context, id string) { closed = append(closed, id) })

	require.NoError(t, r.Close(ctx, s.ID))
	assert.Equal(t, []string{s.ID}, closed)
	assert.Zero(t, r.Len())

	_, err = r.Get(ctx, s.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, r.Close(ctx, s.ID), apperr.ErrNotFound)
}

func TestSession_CurrentUser(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, nil)
	s, err := r.Create(ctx)
	require.NoError(t, err)

	_, err = s.CurrentUser()
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	signIn(t, s, "u1")
	user, err := s.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UID)

	require.NoError(t, s.Publish(ctx, entity.UserProfileUpdated{Name: "Mona"}))
	assert.Equal(t, "Mona", s.User.State().Name)
}

func TestSession_SignOutClearsEveryContainer(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, nil)
	s, err := r.Create(ctx)
	require.NoError(t, err)

	signIn(t, s, "u1")
	_, err = s.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	_, err = s.Cart.Dispatch(ctx, entity.CouponApplied{Code: "EID"})
	require.NoError(t, err)
	applied, err := s.Wishlist.ApplyIf(s.Wishlist.Generation(), entity.WishlistItemAdded{Item: entity.WishlistItem{ID: "p1"}})
	require.NoError(t, err)
	require.True(t, applied)
	require.True(t, s.Wishlist.Contains("p1"))

	require.NoError(t, s.Publish(ctx, entity.UserSignedOut{SignedOutAt: time.Now()}))

	assert.False(t, s.User.State().SignedIn())
	assert.Equal(t, entity.CartState{}, s.Cart.State())
	assert.Empty(t, s.Wishlist.State().Items)
	assert.False(t, s.Wishlist.Contains("p1"))

	// Signing out of an empty session is fine too.
	require.NoError(t, s.Publish(ctx, entity.UserSignedOut{SignedOutAt: time.Now()}))
	assert.True(t, s.Cart.State().Empty())
}

func TestSession_SignOutDoesNotReachOtherSessions(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, nil)
	a, err := r.Create(ctx)
	require.NoError(t, err)
	b, err := r.Create(ctx)
	require.NoError(t, err)

	signIn(t, a, "u1")
	signIn(t, b, "u2")
	_, err = b.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, a.Publish(ctx, entity.UserSignedOut{SignedOutAt: time.Now()}))

	assert.True(t, b.User.State().SignedIn())
	assert.Len(t, b.Cart.State().Items, 1)
}

func TestWishlistStore_DropsStaleUpdates(t *testing.T) {
	ctx := context.Background()
	w := NewWishlistStore()

	gen := w.Generation()
	require.NoError(t, w.Handle(ctx, entity.UserSignedOut{}))

	applied, err := w.ApplyIf(gen, entity.WishlistItemAdded{Item: entity.WishlistItem{ID: "p1"}})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, w.Contains("p1"))

	applied, err = w.ApplyIf(w.Generation(), entity.WishlistItemAdded{Item: entity.WishlistItem{ID: "p1"}})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, w.Contains("p1"))
}

func TestWishlistStore_StateIsACopy(t *testing.T) {
	w := NewWishlistStore()
	_, err := w.ApplyIf(0, entity.WishlistItemAdded{Item: entity.WishlistItem{ID: "p1", Name: "Laban"}})
	require.NoError(t, err)

	items := w.State().Items
	items[0].Name = "changed"
	assert.Equal(t, "Laban", w.State().Items[0].Name)
}

func TestCartStore_RejectedEventChangesNothing(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewEventStore()
	c := NewCartStore("s1", journal)

	_, err := c.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	st, err := c.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, entity.ErrInvalidQuantity)
	assert.Equal(t, 2, st.Items[0].Quantity)

	records, err := journal.LoadEvents(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, records, 1, "rejected events are not journaled")
}

func TestCartStore_JournalFailureLeavesCart(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewEventStore()
	journal.Fail("SaveEvents", assert.AnError)
	c := NewCartStore("s1", journal)

	_, err := c.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 1})
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, c.State().Empty())
}

func TestCartStore_SignOutClearsWhenJournalFails(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewEventStore()
	r := newRegistry(t, journal)
	s, err := r.Create(ctx)
	require.NoError(t, err)
	signIn(t, s, "u1")
	_, err = s.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)

	journal.Fail("SaveEvents", assert.AnError)
	require.NoError(t, s.Publish(ctx, entity.UserSignedOut{}))

	assert.False(t, s.User.State().SignedIn())
	assert.Empty(t, s.Cart.State().Items)
	records, err := journal.LoadEvents(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, records, "the pre-sign-out cart must not be replayed")

	// The journal picks up again from an empty stream.
	journal.Fail("SaveEvents", nil)
	_, err = s.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p2", Quantity: 1})
	require.NoError(t, err)
	records, err = journal.LoadEvents(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCartStore_ClearWhenJournalCannotBeDropped(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewEventStore()
	c := NewCartStore("s1", journal)
	_, err := c.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	journal.Fail("SaveEvents", assert.AnError)
	journal.Fail("DeleteStream", assert.AnError)
	st, err := c.Dispatch(ctx, entity.CartCleared{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, st.Empty())
	assert.True(t, c.State().Empty())
}

func TestRegistry_ResumesJournaledCart(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewEventStore()

	first := newRegistry(t, journal)
	s, err := first.Create(ctx)
	require.NoError(t, err)
	_, err = s.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	_, err = s.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	_, err = s.Cart.Dispatch(ctx, entity.CartItemQuantityUpdated{ProductID: "p1", Quantity: -1})
	require.NoError(t, err)

	// A restarted process only has the journal.
	second := newRegistry(t, journal)
	resumed, err := second.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []entity.CartItem{{ProductID: "p1", Quantity: 5}}, resumed.Cart.State().Items)
	assert.Equal(t, 1, second.Len())

	// The resumed cart keeps appending at the right version.
	_, err = resumed.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p2", Quantity: 1})
	require.NoError(t, err)

	_, err = second.Get(ctx, "never-seen")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, second.Close(ctx, s.ID))
	records, err := journal.LoadEvents(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRegistry_ConcurrentPublishes(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, nil)
	s, err := r.Create(ctx)
	require.NoError(t, err)
	signIn(t, s, "u1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Publish(ctx, entity.UserProfileUpdated{Name: "Mona"}))
		}()
	}
	wg.Wait()
	assert.Equal(t, "Mona", s.User.State().Name)
}

func TestRegistry_SweepClosesIdleSessions(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewEventStore()
	r := newRegistry(t, journal)
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	idle, err := r.Create(ctx)
	require.NoError(t, err)
	active, err := r.Create(ctx)
	require.NoError(t, err)
	_, err = idle.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	var closed []string
	r.OnClose(func(ctx context.Context, id string) { closed = append(closed, id) })

	clock = clock.Add(20 * time.Minute)
	_, err = r.Get(ctx, active.ID)
	require.NoError(t, err)
	clock = clock.Add(15 * time.Minute)

	assert.Equal(t, 1, r.Sweep(ctx, 30*time.Minute))
	assert.Equal(t, []string{idle.ID}, closed)
	assert.Equal(t, 1, r.Len())

	records, err := journal.LoadEvents(ctx, idle.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
	_, err = r.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = r.Get(ctx, active.ID)
	assert.NoError(t, err)
	assert.Zero(t, r.Sweep(ctx, 30*time.Minute))
}

func TestRegistry_ExpireIdleRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newRegistry(t, nil)
	_, err := r.Create(ctx)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ExpireIdle(ctx, time.Millisecond, 5*time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ExpireIdle did not return after cancel")
	}
}
