package entity

import "fmt"

// WishlistState is the local copy of the signed-in user's wishlist. Items are
// unique by product id and keep insertion order.
type WishlistState struct {
	Items []WishlistItem `json:"items"`
}

// Contains is the synchronous lookup the UI renders from.
func (s WishlistState) Contains(productID string) bool {
	for _, item := range s.Items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// Reduce returns the state after e. The receiver is never modified.
func (s WishlistState) Reduce(e Event) (WishlistState, error) {
	switch e := e.(type) {
	case WishlistLoaded:
		return WishlistState{Items: dedupeWishlist(e.Items)}, nil
	case WishlistItemAdded:
		if s.Contains(e.Item.ID) {
			return s, nil
		}
		items := make([]WishlistItem, 0, len(s.Items)+1)
		items = append(items, s.Items...)
		return WishlistState{Items: append(items, e.Item)}, nil
	case WishlistItemRemoved:
		items := make([]WishlistItem, 0, len(s.Items))
		for _, item := range s.Items {
			if item.ID != e.ProductID {
				items = append(items, item)
			}
		}
		return WishlistState{Items: items}, nil
	case WishlistCleared, UserSignedOut:
		return WishlistState{}, nil
	case UserSignedIn, UserProfileUpdated:
		return s, nil
	default:
		return s, fmt.Errorf("unknown event type for wishlist: %s", e.EventType())
	}
}

func dedupeWishlist(items []WishlistItem) []WishlistItem {
	seen := make(map[string]bool, len(items))
	out := make([]WishlistItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}
