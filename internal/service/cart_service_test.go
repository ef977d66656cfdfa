package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/cache"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

func TestCartService_AddMergesByProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.session(t)

	_, err := f.cart.AddItem(ctx, sess, "p1", 2)
	require.NoError(t, err)
	cart, err := f.cart.AddItem(ctx, sess, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, []entity.CartItem{{ProductID: "p1", Quantity: 5}}, cart.Items)

	_, err = f.cart.AddItem(ctx, sess, "p1", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.cart.AddItem(ctx, sess, "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 5, sess.Cart.State().Quantity())
}

func TestCartService_UpdateQuantityBelowOneIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.session(t)
	_, err := f.cart.AddItem(ctx, sess, "p1", 2)
	require.NoError(t, err)

	for _, q := range []int{0, -3} {
		cart, err := f.cart.UpdateQuantity(ctx, sess, "p1", q)
		require.NoError(t, err)
		assert.Equal(t, 2, cart.Items[0].Quantity, "quantity %d", q)
	}

	cart, err := f.cart.UpdateQuantity(ctx, sess, "p1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)
}

func TestCartService_RemoveCouponClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.session(t)
	_, err := f.cart.AddItem(ctx, sess, "p1", 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, sess, "p2", 1)
	require.NoError(t, err)

	cart, err := f.cart.ApplyCoupon(ctx, sess, "  eid10 ")
	require.NoError(t, err)
	assert.Equal(t, "EID10", cart.Coupon)
	_, err = f.cart.ApplyCoupon(ctx, sess, " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	cart, err = f.cart.RemoveItem(ctx, sess, "p1")
	require.NoError(t, err)
	assert.Equal(t, []entity.CartItem{{ProductID: "p2", Quantity: 1}}, cart.Items)

	cart, err = f.cart.RemoveCoupon(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, cart.Coupon)

	cart, err = f.cart.Clear(ctx, sess)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestCartService_Details(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.session(t)
	_, err := f.cart.AddItem(ctx, sess, "p1", 2)
	require.NoError(t, err)

	d, err := f.cart.Details(ctx, sess)
	require.NoError(t, err)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "100.00", d.Subtotal.StringFixed(2))
	assert.Equal(t, "100.00 EGP", d.FormattedSubtotal)
	assert.Equal(t, "https://cdn.example.com/img/laban.jpg", d.Lines[0].Product.Image)
}

func TestCatalogService_SessionCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.session(t)

	products, err := f.catalog.Products(ctx, first)
	require.NoError(t, err)
	require.Len(t, products, 3)

	// The session keeps the catalog it first saw, even across store
	// failures.
	f.products.Save(entity.Product{ID: "p4", Name: "Feta", Price: 70})
	f.products.Fail("FindAll", apperr.ErrPermissionDenied)
	products, err = f.catalog.Products(ctx, first)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	second := f.session(t)
	_, err = f.catalog.Products(ctx, second)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	f.products.Fail("FindAll", nil)
	products, err = f.catalog.Products(ctx, second)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	require.NoError(t, f.registry.Close(ctx, first.ID))
	_, ok, err := f.cache.Get(ctx, cache.SessionKey(first.ID, ProductsCacheKey))
	require.NoError(t, err)
	assert.False(t, ok, "closing the session drops its cache")
}

func TestCatalogService_DiscardsUnreadableCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.session(t)
	require.NoError(t, f.cache.Set(ctx, cache.SessionKey(sess.ID, ProductsCacheKey), []byte("{not json")))

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	products, err := f.catalog.Products(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Contains(t, logs.String(), "Discarding unreadable product cache")
	assert.Contains(t, logs.String(), "invalid character", "the decode error is logged")
}
