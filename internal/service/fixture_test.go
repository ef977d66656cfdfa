package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kareempogba0/B-Laban/internal/cache"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/identity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
	"github.com/kareempogba0/B-Laban/internal/messaging/gochannel"
	"github.com/kareempogba0/B-Laban/internal/repository/memory"
	"github.com/kareempogba0/B-Laban/internal/state"
)

const imageBase = "https://cdn.example.com"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// recorder is a Publisher that keeps what it was given.
type recorder struct {
	mu     sync.Mutex
	events map[string][]entity.Event
	err    error
}

func (r *recorder) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.events == nil {
		r.events = make(map[string][]entity.Event)
	}
	r.events[topic] = append(r.events[topic], event)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) on(topic string) []entity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Event(nil), r.events[topic]...)
}

var _ messaging.Publisher = (*recorder)(nil)

type fixture struct {
	products  *memory.ProductRepository
	profiles  *memory.ProfileRepository
	orders    *memory.OrderRepository
	reviews   *memory.ReviewRepository
	wishlists *memory.WishlistRepository
	cache     cache.Cache
	provider  *identity.StaticProvider
	published *recorder
	registry  *state.Registry

	catalog  *CatalogService
	cart     *CartService
	wishlist *WishlistService
	auth     *AuthService
	review   *ReviewService
	checkout *CheckoutService
	profile  *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := gochannel.NewBus(slog.Default())
	t.Cleanup(func() { _ = bus.Close() })

	f := &fixture{
		products: memory.NewProductRepository(
			entity.Product{ID: "p1", Name: "Fresh Laban", Price: 50, Image: "/img/laban.jpg"},
			entity.Product{ID: "p2", Name: "Mahalabia", Price: 40},
			entity.Product{ID: "p3", Name: "Um Ali", Price: 65},
		),
		profiles:  memory.NewProfileRepository(),
		orders:    memory.NewOrderRepository(),
		reviews:   memory.NewReviewRepository(),
		wishlists: memory.NewWishlistRepository(),
		cache:     cache.NewMemoryCache(),
		provider:  identity.NewStaticProvider(),
		published: &recorder{},
		registry:  state.NewRegistry(bus, nil),
	}
	t.Cleanup(f.registry.CloseAll)

	f.catalog = NewCatalogService(f.products, f.cache, imageBase)
	f.cart = NewCartService(f.catalog)
	f.wishlist = NewWishlistService(f.wishlists, imageBase)
	f.wishlist.now = func() time.Time { return fixedNow }
	f.auth = NewAuthService(f.provider, f.profiles, f.wishlist)
	f.auth.now = func() time.Time { return fixedNow }
	f.review = NewReviewService(f.reviews, f.orders, f.profiles, f.products, f.published)
	f.review.now = func() time.Time { return fixedNow }
	f.checkout = NewCheckoutService(f.orders, f.catalog, f.published)
	f.checkout.now = func() time.Time { return fixedNow }
	f.profile = NewProfileService(f.profiles, nil)
	f.registry.OnClose(f.catalog.ForgetSession)

	f.provider.Register("token-u1", identity.User{UID: "u1", Email: "mona@example.com", DisplayName: "Mona"})
	f.provider.Register("token-u2", identity.User{UID: "u2", Email: "omar@example.com"})
	return f
}

func (f *fixture) session(t *testing.T) *state.Session {
	t.Helper()
	s, err := f.registry.Create(context.Background())
	require.NoError(t, err)
	return s
}

// signedIn returns a session of u1 with a stored profile.
func (f *fixture) signedIn(t *testing.T) *state.Session {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.profiles.Create(ctx, entity.UserProfile{UID: "u1", Email: "mona@example.com", Name: "Mona Adel"}))
	s := f.session(t)
	_, err := f.auth.SignIn(ctx, s, SignInRequest{IDToken: "token-u1", Method: SignInPassword})
	require.NoError(t, err)
	return s
}

func (f *fixture) deliver(uid string, productIDs ...string) {
	items := make([]entity.OrderItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, entity.OrderItem{ProductID: id, Quantity: 1, Price: 50})
	}
	_, _ = f.orders.Create(context.Background(), entity.Order{
		UserID:    uid,
		Status:    entity.OrderStatusDelivered,
		Items:     items,
		OrderDate: fixedNow.Add(-48 * time.Hour),
	})
}
