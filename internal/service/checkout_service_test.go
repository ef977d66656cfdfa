package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
)

var cairo = entity.Address{HouseNo: "12", Line1: "Tahrir St", City: "Cairo", Country: entity.DefaultCountry, Pin: "11511"}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signedIn(t)

	_, err := f.cart.AddItem(ctx, sess, "p1", 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, sess, "p2", 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, sess, "p3", 1)
	require.NoError(t, err)
	f.products.Remove("p3")

	order, err := f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: cairo, PaymentMethod: "cod"})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, entity.OrderStatusPlaced, order.Status)
	assert.Equal(t, fixedNow, order.OrderDate)
	assert.Equal(t, 140.0, order.TotalAmount)
	assert.Equal(t, []string{"p1", "p2"}, order.ProductIDs(), "lines of removed products are skipped")

	// Only the ordered lines leave the cart.
	assert.Equal(t, []entity.CartItem{{ProductID: "p3", Quantity: 1}}, sess.Cart.State().Items)

	events := f.published.on(messaging.TopicOrdersPlaced)
	require.Len(t, events, 1)
	placed, ok := events[0].(entity.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, order.ID, placed.OrderID)
	assert.Equal(t, 140.0, placed.TotalAmount)

	history, err := f.checkout.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
	assert.Equal(t, "140.00 EGP", history[0].FormattedTotal)
}

func TestCheckoutService_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.checkout.PlaceOrder(ctx, f.session(t), CheckoutRequest{ShippingAddress: cairo, PaymentMethod: "cod"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	sess := f.signedIn(t)
	_, err = f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: cairo, PaymentMethod: "cod"})
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)

	_, err = f.cart.AddItem(ctx, sess, "p1", 1)
	require.NoError(t, err)

	_, err = f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: cairo})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "paymentMethod", verr.Field)

	_, err = f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: entity.Address{Country: entity.DefaultCountry}, PaymentMethod: "cod"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shippingAddress", verr.Field)

	f.products.Remove("p1")
	_, err = f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: cairo, PaymentMethod: "cod"})
	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Len(t, sess.Cart.State().Items, 1, "a rejected checkout keeps the cart")
}

func TestCheckoutService_StoreFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signedIn(t)
	_, err := f.cart.AddItem(ctx, sess, "p1", 1)
	require.NoError(t, err)

	f.orders.Fail("Create", apperr.ErrPermissionDenied)
	_, err = f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: cairo, PaymentMethod: "cod"})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	assert.Len(t, sess.Cart.State().Items, 1)
	assert.Empty(t, f.published.on(messaging.TopicOrdersPlaced))
}

func TestCheckoutService_PublishFailureIsOnlyLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sess := f.signedIn(t)
	_, err := f.cart.AddItem(ctx, sess, "p1", 1)
	require.NoError(t, err)

	f.published.err = errors.New("broker down")
	order, err := f.checkout.PlaceOrder(ctx, sess, CheckoutRequest{ShippingAddress: cairo, PaymentMethod: "cod"})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.True(t, sess.Cart.State().Empty())
}
