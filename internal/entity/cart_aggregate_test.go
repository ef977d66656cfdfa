package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reduceAll(t *testing.T, events ...Event) CartState {
	t.Helper()
	var s CartState
	for _, e := range events {
		next, err := s.Reduce(e)
		require.NoError(t, err)
		s = next
	}
	return s
}

func TestCartReduce_AddMergesByProduct(t *testing.T) {
	s := reduceAll(t,
		ItemAddedToCart{ProductID: "p1", Quantity: 1},
		ItemAddedToCart{ProductID: "p2", Quantity: 2},
		ItemAddedToCart{ProductID: "p1", Quantity: 3},
	)

	require.Len(t, s.Items, 2)
	assert.Equal(t, CartItem{ProductID: "p1", Quantity: 4}, s.Items[0])
	assert.Equal(t, CartItem{ProductID: "p2", Quantity: 2}, s.Items[1])
	assert.Equal(t, 6, s.Quantity())
}

func TestCartReduce_AddRejectsQuantityBelowOne(t *testing.T) {
	s := reduceAll(t, ItemAddedToCart{ProductID: "p1", Quantity: 1})

	next, err := s.Reduce(ItemAddedToCart{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, s, next)
}

func TestCartReduce_UpdateBelowOneIsNoop(t *testing.T) {
	s := reduceAll(t, ItemAddedToCart{ProductID: "p1", Quantity: 1})

	for _, q := range []int{0, -1} {
		next, err := s.Reduce(CartItemQuantityUpdated{ProductID: "p1", Quantity: q})
		require.NoError(t, err)
		assert.Equal(t, s, next, "quantity %d", q)
	}

	next, err := s.Reduce(CartItemQuantityUpdated{ProductID: "p1", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, next.Items[0].Quantity)
	assert.Equal(t, 1, s.Items[0].Quantity, "receiver must not change")
}

func TestCartReduce_RemoveAndPurchased(t *testing.T) {
	s := reduceAll(t,
		ItemAddedToCart{ProductID: "p1", Quantity: 1},
		ItemAddedToCart{ProductID: "p2", Quantity: 1},
		ItemAddedToCart{ProductID: "p3", Quantity: 1},
		ItemRemovedFromCart{ProductID: "p2"},
	)
	assert.Equal(t, []CartItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p3", Quantity: 1}}, s.Items)

	next, err := s.Reduce(PurchasedItemsRemoved{ProductIDs: []string{"p1", "p9"}})
	require.NoError(t, err)
	assert.Equal(t, []CartItem{{ProductID: "p3", Quantity: 1}}, next.Items)
	assert.Len(t, s.Items, 2)
}

func TestCartReduce_CouponAndReset(t *testing.T) {
	s := reduceAll(t,
		ItemAddedToCart{ProductID: "p1", Quantity: 2},
		CouponApplied{Code: "LABAN10"},
	)
	assert.Equal(t, "LABAN10", s.Coupon)

	cleared := reduceAll(t, CouponRemoved{})
	assert.Empty(t, cleared.Coupon)

	for _, e := range []Event{CartCleared{}, UserSignedOut{}} {
		next, err := s.Reduce(e)
		require.NoError(t, err)
		assert.True(t, next.Empty(), e.EventType())
		assert.Empty(t, next.Coupon, e.EventType())
	}
}

func TestCartReduce_UnknownEvent(t *testing.T) {
	_, err := CartState{}.Reduce(WishlistCleared{})
	assert.Error(t, err)
}

func TestCartAggregate_Rehydrate(t *testing.T) {
	var records []EventStoreRecord
	for _, e := range []Event{
		ItemAddedToCart{ProductID: "p1", Quantity: 2},
		CartItemQuantityUpdated{ProductID: "p1", Quantity: 3},
		ItemAddedToCart{ProductID: "p2", Quantity: 1},
		CouponApplied{Code: "EID"},
	} {
		payload, err := json.Marshal(e)
		require.NoError(t, err)
		records = append(records, EventStoreRecord{StreamID: "s1", EventType: e.EventType(), Payload: payload})
	}

	agg := NewCartAggregate("s1")
	require.NoError(t, agg.Rehydrate(records))

	assert.Equal(t, 4, agg.GetVersion())
	assert.Equal(t, "s1", agg.GetAggregateID())
	assert.Equal(t, []CartItem{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 1}}, agg.State.Items)
	assert.Equal(t, "EID", agg.State.Coupon)
}

func TestDecodeEvent(t *testing.T) {
	e, err := DecodeEvent("ItemAddedToCart", []byte(`{"product_id":"p1","quantity":2}`))
	require.NoError(t, err)
	assert.Equal(t, ItemAddedToCart{ProductID: "p1", Quantity: 2}, e)

	e, err = DecodeEvent("CartCleared", nil)
	require.NoError(t, err)
	assert.Equal(t, CartCleared{}, e)

	_, err = DecodeEvent("Nope", nil)
	assert.Error(t, err)

	_, err = DecodeEvent("ItemAddedToCart", []byte(`{`))
	assert.Error(t, err)
}
