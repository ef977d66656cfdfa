package entity

import "time"

// --- Cart events ---

// ItemAddedToCart is emitted when a shopper drops a product into the cart.
type ItemAddedToCart struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (e ItemAddedToCart) EventType() string { return "ItemAddedToCart" }

// CartItemQuantityUpdated sets the quantity of a line that is already in the cart.
type CartItemQuantityUpdated struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (e CartItemQuantityUpdated) EventType() string { return "CartItemQuantityUpdated" }

// ItemRemovedFromCart drops a line regardless of its quantity.
type ItemRemovedFromCart struct {
	ProductID string `json:"product_id"`
}

func (e ItemRemovedFromCart) EventType() string { return "ItemRemovedFromCart" }

// PurchasedItemsRemoved is emitted after checkout for the lines that were ordered.
type PurchasedItemsRemoved struct {
	ProductIDs []string `json:"product_ids"`
}

func (e PurchasedItemsRemoved) EventType() string { return "PurchasedItemsRemoved" }

type CouponApplied struct {
	Code string `json:"code"`
}

func (e CouponApplied) EventType() string { return "CouponApplied" }

type CouponRemoved struct{}

func (e CouponRemoved) EventType() string { return "CouponRemoved" }

// CartCleared empties the cart explicitly.
type CartCleared struct{}

func (e CartCleared) EventType() string { return "CartCleared" }

// --- Wishlist events ---

// WishlistLoaded replaces the local wishlist with the remote one.
type WishlistLoaded struct {
	Items []WishlistItem `json:"items"`
}

func (e WishlistLoaded) EventType() string { return "WishlistLoaded" }

// WishlistItemAdded is applied only after the remote write succeeded.
type WishlistItemAdded struct {
	Item WishlistItem `json:"item"`
}

func (e WishlistItemAdded) EventType() string { return "WishlistItemAdded" }

type WishlistItemRemoved struct {
	ProductID string `json:"product_id"`
}

func (e WishlistItemRemoved) EventType() string { return "WishlistItemRemoved" }

type WishlistCleared struct{}

func (e WishlistCleared) EventType() string { return "WishlistCleared" }

// --- Session events ---

// UserSignedIn carries the normalized user record published by the auth bridge.
type UserSignedIn struct {
	User FullUser `json:"user"`
}

func (e UserSignedIn) EventType() string { return "UserSignedIn" }

// UserProfileUpdated patches name and picture; empty fields are left untouched.
type UserProfileUpdated struct {
	Name       string `json:"name,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

func (e UserProfileUpdated) EventType() string { return "UserProfileUpdated" }

// UserSignedOut is the clear signal. Every container holding per-user state
// subscribes to it on its own.
type UserSignedOut struct {
	SignedOutAt time.Time `json:"signed_out_at"`
}

func (e UserSignedOut) EventType() string { return "UserSignedOut" }

// --- Domain events published out of process ---

// OrderPlaced is emitted when checkout wrote a new order.
type OrderPlaced struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	PlacedAt    time.Time   `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// ReviewMirrorFailed records a partial review write: the global review exists
// but its per-product mirror does not (or could not be updated).
type ReviewMirrorFailed struct {
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}

func (e ReviewMirrorFailed) EventType() string { return "ReviewMirrorFailed" }
