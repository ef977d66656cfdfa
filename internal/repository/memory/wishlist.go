package memory

import (
	"context"
	"sync"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

// WishlistRepository keeps each user's wishlist in insertion order. A
// per-item fault "Delete/<productId>" also applies to Clear.
type WishlistRepository struct {
	hooks

	mu    sync.RWMutex
	lists map[string][]entity.WishlistItem
}

func NewWishlistRepository() *WishlistRepository {
	return &WishlistRepository{lists: make(map[string][]entity.WishlistItem)}
}

func (r *WishlistRepository) List(ctx context.Context, uid string) ([]entity.WishlistItem, error) {
	if err := r.enter("List"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.WishlistItem(nil), r.lists[uid]...), nil
}

func (r *WishlistRepository) Put(ctx context.Context, uid string, item entity.WishlistItem) error {
	if err := r.enter("Put"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.lists[uid] {
		if existing.ID == item.ID {
			r.lists[uid][i] = item
			return nil
		}
	}
	r.lists[uid] = append(r.lists[uid], item)
	return nil
}

func (r *WishlistRepository) Delete(ctx context.Context, uid, productID string) error {
	if err := r.enter("Delete"); err != nil {
		return err
	}
	if err := r.fault("Delete/" + productID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[uid] = without(r.lists[uid], productID)
	return nil
}

func (r *WishlistRepository) Clear(ctx context.Context, uid string) error {
	if err := r.enter("Clear"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var kept []entity.WishlistItem
	var firstErr error
	for _, item := range r.lists[uid] {
		if err := r.fault("Delete/" + item.ID); err != nil {
			kept = append(kept, item)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	deleted := len(r.lists[uid]) - len(kept)
	r.lists[uid] = kept
	if firstErr != nil {
		return &apperr.PartialWriteError{Op: "clear wishlist", Completed: deleted, Failed: len(kept), Err: firstErr}
	}
	return nil
}

// MigrateLegacy has nothing to migrate: the memory store never used the
// legacy layout.
func (r *WishlistRepository) MigrateLegacy(ctx context.Context) (repository.MigrationReport, error) {
	return repository.MigrationReport{}, r.enter("MigrateLegacy")
}

func without(items []entity.WishlistItem, productID string) []entity.WishlistItem {
	out := make([]entity.WishlistItem, 0, len(items))
	for _, item := range items {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}
