package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

func TestHooks(t *testing.T) {
	ctx := context.Background()
	r := NewProfileRepository()
	boom := errors.New("boom")

	var calls int
	r.Before("Get", func() { calls++ })
	r.Fail("Get", boom)

	_, err := r.Get(ctx, "u1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	r.Fail("Get", nil)
	_, err = r.Get(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 2, calls)
}

func TestWishlistRepository_ClearReportsPartialFailure(t *testing.T) {
	ctx := context.Background()
	r := NewWishlistRepository()
	for _, id := range []string{"p1", "p2", "p1"} {
		require.NoError(t, r.Put(ctx, "u1", entity.WishlistItem{ID: id}))
	}
	require.NoError(t, r.Put(ctx, "u2", entity.WishlistItem{ID: "p2"}))

	items, err := r.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, items, 2, "put replaces by product id")

	r.Fail("Delete/p2", errors.New("timeout"))
	err = r.Clear(ctx, "u1")
	var pw *apperr.PartialWriteError
	require.ErrorAs(t, err, &pw)
	assert.Equal(t, 1, pw.Completed)
	assert.Equal(t, 1, pw.Failed)

	assert.Error(t, r.Delete(ctx, "u1", "p2"))

	items, err = r.List(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, items, 1, "other users are untouched")
}

func TestEventStore_OptimisticConcurrency(t *testing.T) {
	ctx := context.Background()
	s := NewEventStore()

	require.NoError(t, s.SaveEvents(ctx, "s1", "cart", 0, []entity.Event{
		entity.ItemAddedToCart{ProductID: "p1", Quantity: 1},
		entity.CouponApplied{Code: "EID"},
	}))
	err := s.SaveEvents(ctx, "s1", "cart", 1, []entity.Event{entity.CartCleared{}})
	assert.ErrorContains(t, err, "concurrency exception")

	records, err := s.LoadEvents(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[1].Version)
	assert.Equal(t, "CouponApplied", records[1].EventType)

	require.NoError(t, s.DeleteStream(ctx, "s1"))
	records, err = s.LoadEvents(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReviewRepository_MirrorIsSeparate(t *testing.T) {
	ctx := context.Background()
	r := NewReviewRepository()

	id, err := r.Create(ctx, entity.Review{UserID: "u1", ProductID: "p1", Rating: 4})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = r.GetMirror(ctx, "p1", id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, r.PutMirror(ctx, entity.Review{ID: id, UserID: "u1", ProductID: "p1", Rating: 4}))
	require.NoError(t, r.Delete(ctx, id))

	mirror, err := r.ListMirror(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, mirror, 1)
}
