package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

// ReviewRepository keeps the global reviews and the per-product mirrors in
// separate maps, so the two can drift exactly like the real stores.
type ReviewRepository struct {
	hooks

	mu      sync.RWMutex
	reviews map[string]entity.Review
	mirrors map[string]map[string]entity.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[string]entity.Review),
		mirrors: make(map[string]map[string]entity.Review),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, review entity.Review) (string, error) {
	if err := r.enter("Create"); err != nil {
		return "", err
	}
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[review.ID] = review
	return review.ID, nil
}

func (r *ReviewRepository) Get(ctx context.Context, id string) (entity.Review, error) {
	if err := r.enter("Get"); err != nil {
		return entity.Review{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.reviews[id]
	if !ok {
		return entity.Review{}, fmt.Errorf("review %s: %w", id, apperr.ErrNotFound)
	}
	return review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review entity.Review) error {
	if err := r.enter("Update"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.reviews[review.ID]
	if !ok {
		return fmt.Errorf("review %s: %w", review.ID, apperr.ErrNotFound)
	}
	existing.Rating = review.Rating
	existing.Text = review.Text
	existing.UpdatedAt = review.UpdatedAt
	r.reviews[review.ID] = existing
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	if err := r.enter("Delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r *ReviewRepository) FindByUserAndProduct(ctx context.Context, uid, productID string) ([]entity.Review, error) {
	if err := r.enter("FindByUserAndProduct"); err != nil {
		return nil, err
	}
	return r.filter(func(rv entity.Review) bool { return rv.UserID == uid && rv.ProductID == productID }), nil
}

func (r *ReviewRepository) FindByUser(ctx context.Context, uid string) ([]entity.Review, error) {
	if err := r.enter("FindByUser"); err != nil {
		return nil, err
	}
	return r.filter(func(rv entity.Review) bool { return rv.UserID == uid }), nil
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]entity.Review, error) {
	if err := r.enter("ListAll"); err != nil {
		return nil, err
	}
	return r.filter(func(entity.Review) bool { return true }), nil
}

// filter returns matching global reviews, newest first.
func (r *ReviewRepository) filter(keep func(entity.Review) bool) []entity.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Review
	for _, rv := range r.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(reviews []entity.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		if reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].ID < reviews[j].ID
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

func (r *ReviewRepository) PutMirror(ctx context.Context, review entity.Review) error {
	if err := r.enter("PutMirror"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mirrors[review.ProductID] == nil {
		r.mirrors[review.ProductID] = make(map[string]entity.Review)
	}
	r.mirrors[review.ProductID][review.ID] = review
	return nil
}

func (r *ReviewRepository) GetMirror(ctx context.Context, productID, reviewID string) (entity.Review, error) {
	if err := r.enter("GetMirror"); err != nil {
		return entity.Review{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.mirrors[productID][reviewID]
	if !ok {
		return entity.Review{}, fmt.Errorf("mirror of review %s: %w", reviewID, apperr.ErrNotFound)
	}
	return review, nil
}

func (r *ReviewRepository) DeleteMirror(ctx context.Context, productID, reviewID string) error {
	if err := r.enter("DeleteMirror"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mirrors[productID], reviewID)
	return nil
}

func (r *ReviewRepository) ListMirror(ctx context.Context, productID string) ([]entity.Review, error) {
	if err := r.enter("ListMirror"); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Review, 0, len(r.mirrors[productID]))
	for _, rv := range r.mirrors[productID] {
		out = append(out, rv)
	}
	sortNewestFirst(out)
	return out, nil
}
