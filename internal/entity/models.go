package entity

import (
	"strings"
	"time"
)

// PlaceholderImage is used when a product carries no picture at all.
const PlaceholderImage = "https://via.placeholder.com/150?text=No+Image"

// Product represents a product in the store.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	MRP         *float64 `json:"mrp,omitempty"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category,omitempty"`
	Stock       int      `json:"stock"`
	ShowOnHome  bool     `json:"showOnHome,omitempty"`
}

// ResolveImageURL returns an absolute picture URL. Relative paths are served
// from baseURL.
func (p Product) ResolveImageURL(baseURL string) string {
	switch {
	case p.Image == "":
		return PlaceholderImage
	case strings.HasPrefix(p.Image, "http"):
		return p.Image
	case strings.HasPrefix(p.Image, "/"):
		return strings.TrimSuffix(baseURL, "/") + p.Image
	default:
		return strings.TrimSuffix(baseURL, "/") + "/" + p.Image
	}
}

// AuthUser is the lean identity kept in session state.
type AuthUser struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// FullUser is the normalized record the auth bridge publishes.
type FullUser struct {
	User       AuthUser `json:"user"`
	Name       string   `json:"name"`
	ProfilePic string   `json:"profilePic"`
}

type Address struct {
	HouseNo string `json:"houseNo"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pin     string `json:"pin"`
}

// DefaultCountry pre-fills new addresses.
const DefaultCountry = "Egypt"

func (a Address) IsZero() bool {
	return a == Address{} || a == Address{Country: DefaultCountry}
}

func (a Address) Document() map[string]any {
	return map[string]any{
		"houseNo": a.HouseNo,
		"line1":   a.Line1,
		"line2":   a.Line2,
		"city":    a.City,
		"state":   a.State,
		"country": a.Country,
		"pin":     a.Pin,
	}
}

// UserProfile is the profile document stored under users/{uid}.
type UserProfile struct {
	UID            string          `json:"uid"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	ProfilePic     string          `json:"profilePic"`
	Phone          string          `json:"phone,omitempty"`
	Address        Address         `json:"address"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
}

func (p UserProfile) Document() map[string]any {
	methods := make([]any, 0, len(p.PaymentMethods))
	for _, m := range p.PaymentMethods {
		methods = append(methods, m.Document())
	}
	doc := map[string]any{
		"uid":            p.UID,
		"email":          p.Email,
		"name":           p.Name,
		"profilePic":     p.ProfilePic,
		"paymentMethods": methods,
		"createdAt":      p.CreatedAt,
	}
	if p.Phone != "" {
		doc["phone"] = p.Phone
	}
	if !p.Address.IsZero() {
		doc["address"] = p.Address.Document()
	}
	return doc
}

// ProfileUpdate is the editable subset of a profile. An empty ProfilePic
// keeps the current picture.
type ProfileUpdate struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Address    Address `json:"address"`
	ProfilePic string  `json:"profilePic"`
}

// CartItem is a line in the session cart.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// WishlistItem mirrors a document of users/{uid}/wishlist.
type WishlistItem struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Price   float64   `json:"price"`
	Image   string    `json:"image"`
	AddedAt time.Time `json:"addedAt"`
}

func (w WishlistItem) Document() map[string]any {
	return map[string]any{
		"id":      w.ID,
		"name":    w.Name,
		"price":   w.Price,
		"image":   w.Image,
		"addedAt": w.AddedAt,
	}
}

// OrderItem is a line item within an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Tracking struct {
	Code    string `json:"code"`
	Carrier string `json:"carrier"`
}

// Order represents a customer order.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	Status          OrderStatus `json:"status"`
	OrderDate       time.Time   `json:"orderDate"`
	Tracking        *Tracking   `json:"tracking,omitempty"`
	TotalAmount     float64     `json:"totalAmount"`
	ShippingAddress *Address    `json:"shippingAddress,omitempty"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
}

// Contains reports whether any line of the order is for productID.
func (o Order) Contains(productID string) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// ProductIDs returns the distinct product ids of the order, in line order.
func (o Order) ProductIDs() []string {
	seen := make(map[string]bool, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ShowsTracking reports whether tracking details are meaningful for the order.
func (o Order) ShowsTracking() bool {
	return o.Tracking != nil && o.Tracking.Code != "" && o.Status.ShowsTracking()
}

func (o Order) Document() map[string]any {
	items := make([]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"productId": item.ProductID,
			"name":      item.Name,
			"quantity":  item.Quantity,
			"price":     item.Price,
		})
	}
	doc := map[string]any{
		"userId":      o.UserID,
		"items":       items,
		"productIds":  o.ProductIDs(),
		"status":      o.Status.String(),
		"orderDate":   o.OrderDate,
		"totalAmount": o.TotalAmount,
	}
	if o.Tracking != nil {
		doc["tracking"] = map[string]any{"code": o.Tracking.Code, "carrier": o.Tracking.Carrier}
	}
	if o.ShippingAddress != nil {
		doc["shippingAddress"] = o.ShippingAddress.Document()
	}
	if o.PaymentMethod != "" {
		doc["paymentMethod"] = o.PaymentMethod
	}
	return doc
}

// Review is a product review. The same document is stored in the global
// reviews collection and, under the same id, in the product's mirror.
type Review struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	ProductID      string    `json:"productId"`
	Rating         int       `json:"rating"`
	Text           string    `json:"text"`
	UserName       string    `json:"userName"`
	UserProfilePic string    `json:"userProfilePic"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Edited reports whether the review was changed after it was created.
func (r Review) Edited() bool {
	return r.UpdatedAt.After(r.CreatedAt)
}

func (r Review) Document() map[string]any {
	return map[string]any{
		"userId":         r.UserID,
		"productId":      r.ProductID,
		"rating":         r.Rating,
		"text":           r.Text,
		"userName":       r.UserName,
		"userProfilePic": r.UserProfilePic,
		"createdAt":      r.CreatedAt,
		"updatedAt":      r.UpdatedAt,
	}
}

// MirrorDocument is the per-product copy, linked back to the global review.
func (r Review) MirrorDocument() map[string]any {
	doc := r.Document()
	doc["reviewId"] = r.ID
	return doc
}

// ReviewWithProduct joins a review with its product for the account page.
type ReviewWithProduct struct {
	Review
	Product Product `json:"product"`
}
