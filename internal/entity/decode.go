package entity

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDocument is returned when a fetched document lacks a field the
// record cannot exist without.
var ErrMalformedDocument = errors.New("malformed document")

// Documents arrive from the store as loosely typed maps. The decoders below
// are the only place raw shapes are looked at: numbers stored as strings are
// parsed, missing fields fall back to zero values, and statuses become enums.

func ProductFromDocument(id string, data map[string]any) (Product, error) {
	if id == "" {
		return Product{}, fmt.Errorf("%w: product without id", ErrMalformedDocument)
	}
	p := Product{
		ID:          id,
		Name:        asString(data["name"]),
		Description: asString(data["description"]),
		Category:    asString(data["category"]),
		ShowOnHome:  asBool(data["showOnHome"]),
	}
	p.Price, _ = asFloat(data["price"])
	if mrp, ok := asFloat(data["mrp"]); ok {
		p.MRP = &mrp
	}
	p.Stock, _ = asInt(data["stock"])
	p.Image = asString(data["image"])
	if p.Image == "" {
		p.Image = asString(data["imageUrl"])
	}
	return p, nil
}

func ProfileFromDocument(uid string, data map[string]any) (UserProfile, error) {
	if uid == "" {
		return UserProfile{}, fmt.Errorf("%w: profile without uid", ErrMalformedDocument)
	}
	p := UserProfile{
		UID:        uid,
		Email:      asString(data["email"]),
		Name:       asString(data["name"]),
		ProfilePic: asString(data["profilePic"]),
		Phone:      asString(data["phone"]),
		CreatedAt:  asTime(data["createdAt"]),
		Address:    Address{Country: DefaultCountry},
	}
	if addr, ok := data["address"].(map[string]any); ok {
		p.Address = addressFromMap(addr)
	}
	for _, raw := range asSlice(data["paymentMethods"]) {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p.PaymentMethods = append(p.PaymentMethods, paymentMethodFromMap(m))
	}
	return p, nil
}

func addressFromMap(m map[string]any) Address {
	a := Address{
		HouseNo: asString(m["houseNo"]),
		Line1:   asString(m["line1"]),
		Line2:   asString(m["line2"]),
		City:    asString(m["city"]),
		State:   asString(m["state"]),
		Country: asString(m["country"]),
		Pin:     asString(m["pin"]),
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	return a
}

func paymentMethodFromMap(m map[string]any) PaymentMethod {
	pm := PaymentMethod{
		Type:       PaymentMethodType(strings.ToLower(asString(m["type"]))),
		CardType:   asString(m["cardType"]),
		CardNumber: asString(m["cardNumber"]),
		CardExpiry: asString(m["cardExpiry"]),
		UPIID:      asString(m["upiId"]),
	}
	// Methods saved from checkout used different keys.
	if pm.CardType == "" && pm.Type != PaymentMethodCard && pm.Type != PaymentMethodUPI {
		pm.CardType = asString(m["type"])
	}
	if pm.CardExpiry == "" {
		pm.CardExpiry = asString(m["expiry"])
	}
	if pm.UPIID == "" {
		pm.UPIID = asString(m["upi"])
	}
	switch {
	case pm.CardNumber != "":
		pm.Type = PaymentMethodCard
	case pm.UPIID != "":
		pm.Type = PaymentMethodUPI
		pm.CardType = ""
	}
	return pm
}

func OrderFromDocument(id string, data map[string]any) (Order, error) {
	if id == "" {
		return Order{}, fmt.Errorf("%w: order without id", ErrMalformedDocument)
	}
	o := Order{
		ID:            id,
		UserID:        asString(data["userId"]),
		OrderDate:     asTime(data["orderDate"]),
		PaymentMethod: asString(data["paymentMethod"]),
	}
	o.TotalAmount, _ = asFloat(data["totalAmount"])

	status, err := ParseOrderStatus(asString(data["status"]))
	if err != nil {
		slog.Warn("Order has an unrecognised status", "order_id", id, "err", err)
	}
	o.Status = status

	for _, raw := range asSlice(data["items"]) {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := OrderItem{
			ProductID: asString(m["productId"]),
			Name:      asString(m["name"]),
		}
		item.Quantity, _ = asInt(m["quantity"])
		item.Price, _ = asFloat(m["price"])
		if item.ProductID == "" {
			continue
		}
		o.Items = append(o.Items, item)
	}
	if t, ok := data["tracking"].(map[string]any); ok {
		o.Tracking = &Tracking{Code: asString(t["code"]), Carrier: asString(t["carrier"])}
	}
	if addr, ok := data["shippingAddress"].(map[string]any); ok {
		a := addressFromMap(addr)
		o.ShippingAddress = &a
	}
	return o, nil
}

func ReviewFromDocument(id string, data map[string]any) (Review, error) {
	if id == "" {
		return Review{}, fmt.Errorf("%w: review without id", ErrMalformedDocument)
	}
	r := Review{
		ID:             id,
		UserID:         asString(data["userId"]),
		ProductID:      asString(data["productId"]),
		Text:           asString(data["text"]),
		UserName:       asString(data["userName"]),
		UserProfilePic: asString(data["userProfilePic"]),
		CreatedAt:      asTime(data["createdAt"]),
		UpdatedAt:      asTime(data["updatedAt"]),
	}
	r.Rating, _ = asInt(data["rating"])
	if r.UserID == "" || r.ProductID == "" {
		return Review{}, fmt.Errorf("%w: review %s without owner or product", ErrMalformedDocument, id)
	}
	return r, nil
}

// ReviewFromMirrorDocument decodes a per-product copy. Older mirrors were
// created under their own id, so the reviewId link wins over the doc id.
func ReviewFromMirrorDocument(docID string, data map[string]any) (Review, error) {
	id := asString(data["reviewId"])
	if id == "" {
		id = docID
	}
	return ReviewFromDocument(id, data)
}

func WishlistItemFromDocument(id string, data map[string]any) (WishlistItem, error) {
	itemID := asString(data["id"])
	if itemID == "" {
		itemID = id
	}
	if itemID == "" {
		return WishlistItem{}, fmt.Errorf("%w: wishlist item without id", ErrMalformedDocument)
	}
	w := WishlistItem{
		ID:      itemID,
		Name:    asString(data["name"]),
		Image:   asString(data["image"]),
		AddedAt: asTime(data["addedAt"]),
	}
	w.Price, _ = asFloat(data["price"])
	return w, nil
}

func asString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case int, int32, int64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

func asFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func asBool(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func asTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	case int64:
		return time.UnixMilli(v)
	}
	return time.Time{}
}

func asSlice(v any) []any {
	switch v := v.(type) {
	case []any:
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	default:
		return nil
	}
}
