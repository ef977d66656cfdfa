package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductFromDocument(t *testing.T) {
	p, err := ProductFromDocument("laban-001", map[string]any{
		"name":     "Laban Rayeb",
		"price":    "35.5",
		"mrp":      int64(40),
		"stock":    "12",
		"imageUrl": "/img/laban.png",
	})
	require.NoError(t, err)
	assert.Equal(t, 35.5, p.Price)
	require.NotNil(t, p.MRP)
	assert.Equal(t, 40.0, *p.MRP)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, "/img/laban.png", p.Image)
	assert.Equal(t, "https://cdn.example.com/img/laban.png", p.ResolveImageURL("https://cdn.example.com/"))

	_, err = ProductFromDocument("", map[string]any{})
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestResolveImageURL(t *testing.T) {
	assert.Equal(t, PlaceholderImage, Product{}.ResolveImageURL("https://x"))
	assert.Equal(t, "https://a/b.png", Product{Image: "https://a/b.png"}.ResolveImageURL("https://x"))
	assert.Equal(t, "https://x/b.png", Product{Image: "b.png"}.ResolveImageURL("https://x"))
}

func TestOrderFromDocument(t *testing.T) {
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	o, err := OrderFromDocument("o1", map[string]any{
		"userId":      "u1",
		"status":      " delivered ",
		"orderDate":   placed,
		"totalAmount": "120",
		"items": []any{
			map[string]any{"productId": "p1", "name": "Laban", "quantity": "2", "price": 30.0},
			map[string]any{"name": "no id"},
		},
		"tracking": map[string]any{"code": "TRK1", "carrier": "Aramex"},
	})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDelivered, o.Status)
	assert.Equal(t, placed, o.OrderDate)
	assert.Equal(t, 120.0, o.TotalAmount)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, o.Contains("p1"))
	assert.True(t, o.ShowsTracking())

	o, err = OrderFromDocument("o2", map[string]any{"status": "lost in transit"})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusUnknown, o.Status)

	o, err = OrderFromDocument("o3", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusProcessing, o.Status)
	assert.False(t, o.ShowsTracking())
}

func TestReviewFromMirrorDocument(t *testing.T) {
	doc := map[string]any{
		"reviewId":  "r1",
		"userId":    "u1",
		"productId": "p1",
		"rating":    int64(4),
		"text":      "Fresh",
	}
	r, err := ReviewFromMirrorDocument("random-id", doc)
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, 4, r.Rating)

	delete(doc, "reviewId")
	r, err = ReviewFromMirrorDocument("r2", doc)
	require.NoError(t, err)
	assert.Equal(t, "r2", r.ID)

	_, err = ReviewFromDocument("r3", map[string]any{"productId": "p1"})
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestProfileFromDocument_LegacyPaymentMethods(t *testing.T) {
	p, err := ProfileFromDocument("u1", map[string]any{
		"name": "Mona",
		"paymentMethods": []any{
			map[string]any{"type": "Visa", "cardNumber": "4111111111111111", "expiry": "12/29"},
			map[string]any{"type": "upi", "upiId": "mona@okaxis"},
			map[string]any{"type": "card", "cardType": "AMEX", "cardNumber": "371449635398431", "cardExpiry": "01/30"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultCountry, p.Address.Country)
	require.Len(t, p.PaymentMethods, 3)

	assert.Equal(t, PaymentMethod{Type: PaymentMethodCard, CardType: "Visa", CardNumber: "4111111111111111", CardExpiry: "12/29"}, p.PaymentMethods[0])
	assert.Equal(t, PaymentMethod{Type: PaymentMethodUPI, UPIID: "mona@okaxis"}, p.PaymentMethods[1])
	assert.Equal(t, "AMEX", p.PaymentMethods[2].CardType)
}

func TestWishlistItemFromDocument(t *testing.T) {
	w, err := WishlistItemFromDocument("p1", map[string]any{"name": "Laban", "price": int64(30)})
	require.NoError(t, err)
	assert.Equal(t, "p1", w.ID)
	assert.Equal(t, 30.0, w.Price)

	_, err = WishlistItemFromDocument("", map[string]any{})
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestOrderStatus(t *testing.T) {
	for raw, want := range map[string]OrderStatus{
		"Placed":    OrderStatusPlaced,
		"SHIPPED":   OrderStatusShipped,
		"cancelled": OrderStatusCancelled,
		"":          OrderStatusProcessing,
	} {
		got, err := ParseOrderStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseOrderStatus("Unknown")
	assert.Error(t, err)

	assert.Equal(t, "DELIVERED", OrderStatusDelivered.Key())
	assert.True(t, OrderStatusDeclined.Final())
	assert.False(t, OrderStatusPacked.ShowsTracking())
	assert.Equal(t, "Unknown", OrderStatus(99).String())

	var decoded struct {
		Status OrderStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"approved"}`), &decoded))
	assert.Equal(t, OrderStatusApproved, decoded.Status)

	out, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Approved"}`, string(out))
}

func TestOrdersWithStatus_AnyStoredCasing(t *testing.T) {
	var orders []Order
	for i, raw := range []string{"delivered", "DELIVERED", "Delivered", "Shipped"} {
		o, err := OrderFromDocument(string(rune('a'+i)), map[string]any{"userId": "u1", "status": raw})
		require.NoError(t, err)
		orders = append(orders, o)
	}

	delivered := OrdersWithStatus(orders, OrderStatusDelivered)
	require.Len(t, delivered, 3)
	for _, o := range delivered {
		assert.Equal(t, OrderStatusDelivered, o.Status)
	}
	assert.Empty(t, OrdersWithStatus(orders, OrderStatusCancelled))
}
