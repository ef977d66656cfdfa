package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// WishlistService keeps the session wishlist in step with the remote one.
// Remote writes always happen first; the local copy changes only after they
// succeed, and only if the session has not signed out (or switched user) in
// the meantime.
type WishlistService struct {
	wishlists    repository.WishlistRepository
	imageBaseURL string
	now          func() time.Time
}

func NewWishlistService(wishlists repository.WishlistRepository, imageBaseURL string) *WishlistService {
	return &WishlistService{wishlists: wishlists, imageBaseURL: imageBaseURL, now: time.Now}
}

// Load replaces the local wishlist with the remote one.
func (s *WishlistService) Load(ctx context.Context, sess *state.Session) error {
	user, err := sess.CurrentUser()
	if err != nil {
		return err
	}
	gen := sess.Wishlist.Generation()

	items, err := s.wishlists.List(ctx, user.UID)
	if err != nil {
		return fmt.Errorf("failed to load wishlist: %w", err)
	}
	if _, err := sess.Wishlist.ApplyIf(gen, entity.WishlistLoaded{Items: items}); err != nil {
		return err
	}
	return nil
}

// Add stores product in the wishlist. Products already present are left
// as they are.
func (s *WishlistService) Add(ctx context.Context, sess *state.Session, product entity.Product) (entity.WishlistItem, error) {
	user, err := sess.CurrentUser()
	if err != nil {
		return entity.WishlistItem{}, err
	}
	if product.ID == "" {
		return entity.WishlistItem{}, apperr.Invalid("productId", "Invalid product data.")
	}
	gen := sess.Wishlist.Generation()

	item := entity.WishlistItem{
		ID:      product.ID,
		Name:    product.Name,
		Price:   product.Price,
		Image:   product.ResolveImageURL(s.imageBaseURL),
		AddedAt: s.now(),
	}
	if item.Name == "" {
		item.Name = "Unknown Product"
	}

	if err := s.wishlists.Put(ctx, user.UID, item); err != nil {
		slog.Error("Failed to add to wishlist", "uid", user.UID, "product_id", product.ID, "err", err)
		return entity.WishlistItem{}, fmt.Errorf("failed to add to wishlist: %w", err)
	}
	if _, err := sess.Wishlist.ApplyIf(gen, entity.WishlistItemAdded{Item: item}); err != nil {
		return entity.WishlistItem{}, err
	}
	slog.Info("Added to wishlist", "uid", user.UID, "product_id", product.ID)
	return item, nil
}

// Remove deletes productID. Without a signed-in user it does nothing.
func (s *WishlistService) Remove(ctx context.Context, sess *state.Session, productID string) error {
	user, err := sess.CurrentUser()
	if err != nil {
		return nil
	}
	gen := sess.Wishlist.Generation()

	if err := s.wishlists.Delete(ctx, user.UID, productID); err != nil {
		slog.Error("Failed to remove from wishlist", "uid", user.UID, "product_id", productID, "err", err)
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	_, err = sess.Wishlist.ApplyIf(gen, entity.WishlistItemRemoved{ProductID: productID})
	return err
}

// Clear deletes every remote item. The local wishlist is emptied only when
// all deletes succeeded; a partial failure leaves it untouched.
func (s *WishlistService) Clear(ctx context.Context, sess *state.Session) error {
	user, err := sess.CurrentUser()
	if err != nil {
		return nil
	}
	gen := sess.Wishlist.Generation()

	if err := s.wishlists.Clear(ctx, user.UID); err != nil {
		slog.Error("Failed to clear wishlist", "uid", user.UID, "err", err)
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	_, err = sess.Wishlist.ApplyIf(gen, entity.WishlistCleared{})
	return err
}

// IsInWishlist answers from the local copy only.
func (s *WishlistService) IsInWishlist(sess *state.Session, productID string) bool {
	return sess.Wishlist.Contains(productID)
}

// Items returns the local copy.
func (s *WishlistService) Items(sess *state.Session) []entity.WishlistItem {
	return sess.Wishlist.State().Items
}
