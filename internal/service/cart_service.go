package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/pricing"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// CartService orchestrates shopping cart logic. The cart itself is session
// state; every change is an event applied by the session's CartStore.
type CartService struct {
	catalog *CatalogService
}

func NewCartService(catalog *CatalogService) *CartService {
	return &CartService{catalog: catalog}
}

// AddItem drops quantity units of productID into the cart.
func (s *CartService) AddItem(ctx context.Context, sess *state.Session, productID string, quantity int) (entity.CartState, error) {
	slog.Info("Service: Adding item to cart", "session_id", sess.ID, "product_id", productID, "quantity", quantity)

	if quantity < 1 {
		return sess.Cart.State(), apperr.Invalid("quantity", "Quantity must be at least 1.")
	}
	if _, err := s.catalog.Product(ctx, productID); err != nil {
		return sess.Cart.State(), fmt.Errorf("failed to add %s to cart: %w", productID, err)
	}
	return sess.Cart.Dispatch(ctx, entity.ItemAddedToCart{ProductID: productID, Quantity: quantity})
}

// UpdateQuantity sets the quantity of a line. Quantities below one leave the
// cart unchanged; removal is its own action.
func (s *CartService) UpdateQuantity(ctx context.Context, sess *state.Session, productID string, quantity int) (entity.CartState, error) {
	return sess.Cart.Dispatch(ctx, entity.CartItemQuantityUpdated{ProductID: productID, Quantity: quantity})
}

func (s *CartService) RemoveItem(ctx context.Context, sess *state.Session, productID string) (entity.CartState, error) {
	return sess.Cart.Dispatch(ctx, entity.ItemRemovedFromCart{ProductID: productID})
}

func (s *CartService) Clear(ctx context.Context, sess *state.Session) (entity.CartState, error) {
	return sess.Cart.Dispatch(ctx, entity.CartCleared{})
}

// ApplyCoupon stores code on the cart. Codes are kept upper-cased.
func (s *CartService) ApplyCoupon(ctx context.Context, sess *state.Session, code string) (entity.CartState, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return sess.Cart.State(), apperr.Invalid("code", "Please enter a coupon code.")
	}
	return sess.Cart.Dispatch(ctx, entity.CouponApplied{Code: code})
}

func (s *CartService) RemoveCoupon(ctx context.Context, sess *state.Session) (entity.CartState, error) {
	return sess.Cart.Dispatch(ctx, entity.CouponRemoved{})
}

// Details joins the cart with the session's catalog and prices it.
func (s *CartService) Details(ctx context.Context, sess *state.Session) (pricing.CartDetails, error) {
	products, err := s.catalog.Products(ctx, sess)
	if err != nil {
		return pricing.CartDetails{}, fmt.Errorf("failed to price cart: %w", err)
	}
	return pricing.Details(sess.Cart.State(), products), nil
}
