package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

func TestTranslateError(t *testing.T) {
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), apperr.ErrNotFound)
	assert.ErrorIs(t, translateError(mongo.CommandError{Code: 13, Message: "not authorized"}), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, translateError(mongo.CommandError{Code: 291, Message: "no query solutions"}), apperr.ErrIndexRequired)

	other := errors.New("socket closed")
	assert.Same(t, other, translateError(other))
	assert.NoError(t, translateError(nil))
}

func TestSplitID_NormalizesDriverTypes(t *testing.T) {
	placed := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	raw := bson.M{
		"_id":       "o1",
		"userId":    "u1",
		"status":    "Delivered",
		"orderDate": primitive.NewDateTimeFromTime(placed),
		"items": bson.A{
			bson.D{{Key: "productId", Value: "p1"}, {Key: "quantity", Value: int32(2)}, {Key: "price", Value: 30.5}},
		},
	}

	id, data := splitID(raw)
	assert.Equal(t, "o1", id)
	assert.NotContains(t, data, "_id")

	order, err := entity.OrderFromDocument(id, data)
	require.NoError(t, err)
	assert.True(t, placed.Equal(order.OrderDate))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, entity.OrderStatusDelivered, order.Status)
}

func TestNormalize_ObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), normalize(oid))
	assert.Equal(t, "u1/p1", compositeID("u1", "p1"))
}

func TestCollect_SkipsMalformedDocuments(t *testing.T) {
	docs := []bson.M{
		{"_id": "u1/p1", "userId": "u1", "productId": "p1", "rating": int32(5)},
		{"_id": "u2/p1", "userId": "u2", "rating": int32(2)},
		{"_id": "", "userId": "u3", "productId": "p1"},
	}
	var reviews []entity.Review
	for _, raw := range docs {
		id, data := splitID(raw)
		reviews = collect(reviews, id, data, entity.ReviewFromDocument)
	}

	require.Len(t, reviews, 1)
	assert.Equal(t, "u1/p1", reviews[0].ID)
	assert.Equal(t, 5, reviews[0].Rating)
}
