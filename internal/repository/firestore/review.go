package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	firestoreGo "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type reviewRepository struct {
	client *firestoreGo.Client
}

// NewReviewRepository creates a new ReviewRepository backed by Firestore.
func NewReviewRepository(client *firestoreGo.Client) repository.ReviewRepository {
	return &reviewRepository{client: client}
}

func (r *reviewRepository) global() *firestoreGo.CollectionRef {
	return r.client.Collection(reviewsCollection)
}

func (r *reviewRepository) mirror(productID string) *firestoreGo.CollectionRef {
	return r.client.Collection(productsCollection).Doc(productID).Collection(reviewsCollection)
}

func (r *reviewRepository) Create(ctx context.Context, review entity.Review) (string, error) {
	ref := r.global().NewDoc()
	if review.ID != "" {
		ref = r.global().Doc(review.ID)
	}
	if _, err := ref.Create(ctx, review.Document()); err != nil {
		return "", fmt.Errorf("failed to create review: %w", translateError(err))
	}
	return ref.ID, nil
}

func (r *reviewRepository) Get(ctx context.Context, id string) (entity.Review, error) {
	snap, err := getDoc(ctx, r.global().Doc(id))
	if err != nil {
		return entity.Review{}, fmt.Errorf("failed to get review %s: %w", id, err)
	}
	return entity.ReviewFromDocument(snap.Ref.ID, snap.Data())
}

func (r *reviewRepository) Update(ctx context.Context, review entity.Review) error {
	_, err := r.global().Doc(review.ID).Update(ctx, reviewUpdates(review))
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, translateError(err))
	}
	return nil
}

func reviewUpdates(review entity.Review) []firestoreGo.Update {
	return []firestoreGo.Update{
		{Path: "rating", Value: review.Rating},
		{Path: "text", Value: review.Text},
		{Path: "updatedAt", Value: review.UpdatedAt},
	}
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.global().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, translateError(err))
	}
	return nil
}

func (r *reviewRepository) FindByUserAndProduct(ctx context.Context, uid, productID string) ([]entity.Review, error) {
	iter := r.global().
		Where("userId", "==", uid).
		Where("productId", "==", productID).
		Documents(ctx)
	reviews, err := getAll(iter, entity.ReviewFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews of %s for %s: %w", uid, productID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) FindByUser(ctx context.Context, uid string) ([]entity.Review, error) {
	reviews, err := getAll(r.global().Where("userId", "==", uid).Documents(ctx), entity.ReviewFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews of %s: %w", uid, err)
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (r *reviewRepository) ListAll(ctx context.Context) ([]entity.Review, error) {
	reviews, err := getAll(r.global().Documents(ctx), entity.ReviewFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// PutMirror writes the mirror under the review's own id and removes any
// copy still stored under a random id.
func (r *reviewRepository) PutMirror(ctx context.Context, review entity.Review) error {
	if _, err := r.mirror(review.ProductID).Doc(review.ID).Set(ctx, review.MirrorDocument()); err != nil {
		return fmt.Errorf("failed to write mirror of review %s: %w", review.ID, translateError(err))
	}

	legacy, err := r.mirror(review.ProductID).Where("reviewId", "==", review.ID).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to look up legacy mirrors of review %s: %w", review.ID, translateError(err))
	}
	for _, snap := range legacy {
		if snap.Ref.ID == review.ID {
			continue
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete legacy mirror %s: %w", snap.Ref.ID, translateError(err))
		}
	}
	return nil
}

// findMirror returns the mirror document of reviewID. Mirrors written before
// ids were aligned live under a random id and are found by their reviewId.
func (r *reviewRepository) findMirror(ctx context.Context, productID, reviewID string) (*firestoreGo.DocumentSnapshot, error) {
	snap, err := getDoc(ctx, r.mirror(productID).Doc(reviewID))
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	iter := r.mirror(productID).Where("reviewId", "==", reviewID).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err = iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return snap, nil
}

func (r *reviewRepository) GetMirror(ctx context.Context, productID, reviewID string) (entity.Review, error) {
	snap, err := r.findMirror(ctx, productID, reviewID)
	if err != nil {
		return entity.Review{}, fmt.Errorf("failed to get mirror of review %s: %w", reviewID, err)
	}
	return entity.ReviewFromMirrorDocument(snap.Ref.ID, snap.Data())
}

func (r *reviewRepository) DeleteMirror(ctx context.Context, productID, reviewID string) error {
	snap, err := r.findMirror(ctx, productID, reviewID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find mirror of review %s: %w", reviewID, err)
	}
	if _, err := snap.Ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete mirror of review %s: %w", reviewID, translateError(err))
	}
	return nil
}

func (r *reviewRepository) ListMirror(ctx context.Context, productID string) ([]entity.Review, error) {
	reviews, err := getAll(r.mirror(productID).Documents(ctx), entity.ReviewFromMirrorDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of product %s: %w", productID, err)
	}
	sort.SliceStable(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}
