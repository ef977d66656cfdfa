package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity is returned when a cart line would drop below one unit.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartState is the session cart: an ordered list of lines plus an optional coupon.
type CartState struct {
	Items  []CartItem `json:"items"`
	Coupon string     `json:"coupon,omitempty"`
}

// Empty reports whether the cart holds no lines.
func (s CartState) Empty() bool {
	return len(s.Items) == 0
}

// Find returns the line for productID.
func (s CartState) Find(productID string) (CartItem, bool) {
	for _, item := range s.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

// Quantity returns the total number of units across all lines.
func (s CartState) Quantity() int {
	var n int
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// Reduce returns the state after e. The receiver is never modified.
// Updates that would set a quantity below one leave the state as it was.
func (s CartState) Reduce(e Event) (CartState, error) {
	next := CartState{Items: append([]CartItem(nil), s.Items...), Coupon: s.Coupon}

	switch e := e.(type) {
	case ItemAddedToCart:
		if e.Quantity < 1 {
			return s, ErrInvalidQuantity
		}
		for i := range next.Items {
			if next.Items[i].ProductID == e.ProductID {
				next.Items[i].Quantity += e.Quantity
				return next, nil
			}
		}
		next.Items = append(next.Items, CartItem{ProductID: e.ProductID, Quantity: e.Quantity})
	case CartItemQuantityUpdated:
		if e.Quantity < 1 {
			return s, nil
		}
		for i := range next.Items {
			if next.Items[i].ProductID == e.ProductID {
				next.Items[i].Quantity = e.Quantity
			}
		}
	case ItemRemovedFromCart:
		next.Items = filterCart(next.Items, func(item CartItem) bool { return item.ProductID != e.ProductID })
	case PurchasedItemsRemoved:
		purchased := make(map[string]bool, len(e.ProductIDs))
		for _, id := range e.ProductIDs {
			purchased[id] = true
		}
		next.Items = filterCart(next.Items, func(item CartItem) bool { return !purchased[item.ProductID] })
	case CouponApplied:
		next.Coupon = e.Code
	case CouponRemoved:
		next.Coupon = ""
	case CartCleared, UserSignedOut:
		return CartState{}, nil
	case UserSignedIn, UserProfileUpdated:
		return s, nil
	default:
		return s, fmt.Errorf("unknown event type for cart: %s", e.EventType())
	}
	return next, nil
}

func filterCart(items []CartItem, keep func(CartItem) bool) []CartItem {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// CartAggregate rebuilds a session cart from its journal.
type CartAggregate struct {
	AggregateBase
	State CartState
}

// NewCartAggregate creates a new CartAggregate.
func NewCartAggregate(cartID string) *CartAggregate {
	return &CartAggregate{
		AggregateBase: AggregateBase{ID: cartID, Version: 0},
	}
}

// ApplyEvent mutates the aggregate state based on the event.
func (a *CartAggregate) ApplyEvent(e Event) error {
	next, err := a.State.Reduce(e)
	if err != nil {
		return err
	}
	a.State = next
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *CartAggregate) Rehydrate(records []EventStoreRecord) error {
	return rehydrate(records, a.ApplyEvent)
}
