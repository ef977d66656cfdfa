package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/messaging"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// ReviewService guards review creation and keeps the per-product mirror in
// step with the global reviews collection. The two are written one after the
// other, never atomically; a failed mirror write is reported as a partial
// write and announced on reviews.mirror_failed for repair.
type ReviewService struct {
	reviews   repository.ReviewRepository
	orders    repository.OrderRepository
	profiles  repository.ProfileRepository
	products  repository.ProductRepository
	publisher messaging.Publisher
	now       func() time.Time
}

func NewReviewService(
	reviews repository.ReviewRepository,
	orders repository.OrderRepository,
	profiles repository.ProfileRepository,
	products repository.ProductRepository,
	publisher messaging.Publisher,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		orders:    orders,
		profiles:  profiles,
		products:  products,
		publisher: publisher,
		now:       time.Now,
	}
}

// CheckEligibility reports whether uid may review productID. An existing
// review short-circuits the order lookup.
func (s *ReviewService) CheckEligibility(ctx context.Context, uid, productID string) (entity.Eligibility, error) {
	existing, err := s.reviews.FindByUserAndProduct(ctx, uid, productID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing reviews: %w", err)
	}
	if len(existing) > 0 {
		return entity.EligibilityAlreadyReviewed, nil
	}

	delivered, err := s.orders.FindByUserAndStatus(ctx, uid, entity.OrderStatusDelivered)
	if err != nil {
		return "", fmt.Errorf("failed to check delivered orders: %w", err)
	}
	for _, o := range delivered {
		if o.Contains(productID) {
			return entity.EligibilityEligible, nil
		}
	}
	return entity.EligibilityIneligible, nil
}

// Submit creates a review for productID on behalf of the session's user.
func (s *ReviewService) Submit(ctx context.Context, sess *state.Session, productID string, in entity.ReviewInput) (entity.Review, error) {
	user, err := sess.CurrentUser()
	if err != nil {
		return entity.Review{}, err
	}
	if err := in.Validate(); err != nil {
		return entity.Review{}, err
	}
	in = in.Normalize()

	eligibility, err := s.CheckEligibility(ctx, user.UID, productID)
	if err != nil {
		return entity.Review{}, err
	}
	switch eligibility {
	case entity.EligibilityAlreadyReviewed:
		return entity.Review{}, apperr.ErrAlreadyReviewed
	case entity.EligibilityIneligible:
		return entity.Review{}, apperr.ErrNotEligible
	}

	name, pic := s.reviewer(ctx, sess, user)
	now := s.now()
	review := entity.Review{
		UserID:         user.UID,
		ProductID:      productID,
		Rating:         in.Rating,
		Text:           in.Text,
		UserName:       name,
		UserProfilePic: pic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := s.reviews.Create(ctx, review)
	if err != nil {
		return entity.Review{}, fmt.Errorf("failed to submit review: %w", err)
	}
	review.ID = id

	if err := s.reviews.PutMirror(ctx, review); err != nil {
		return review, s.mirrorFailed(ctx, "submit review", review, err)
	}
	slog.Info("Review submitted", "review_id", id, "product_id", productID, "uid", user.UID)
	return review, nil
}

// reviewer picks the display name and picture stored on a review: the
// profile's, then the session's, then the email.
func (s *ReviewService) reviewer(ctx context.Context, sess *state.Session, user entity.AuthUser) (string, string) {
	var name, pic string
	profile, err := s.profiles.Get(ctx, user.UID)
	if err == nil {
		name, pic = profile.Name, profile.ProfilePic
	} else if !errors.Is(err, apperr.ErrNotFound) {
		slog.Warn("Failed to load reviewer profile", "uid", user.UID, "err", err)
	}
	return firstNonEmpty(name, sess.User.State().Name, user.Email), pic
}

// Update edits the rating and text of one of the user's reviews.
func (s *ReviewService) Update(ctx context.Context, sess *state.Session, reviewID string, in entity.ReviewInput) (entity.Review, error) {
	user, err := sess.CurrentUser()
	if err != nil {
		return entity.Review{}, err
	}
	if err := in.Validate(); err != nil {
		return entity.Review{}, err
	}
	in = in.Normalize()

	review, err := s.owned(ctx, user, reviewID)
	if err != nil {
		return entity.Review{}, err
	}
	review.Rating = in.Rating
	review.Text = in.Text
	review.UpdatedAt = s.now()

	if err := s.reviews.Update(ctx, review); err != nil {
		return entity.Review{}, fmt.Errorf("failed to update review: %w", err)
	}

	_, err = s.reviews.GetMirror(ctx, review.ProductID, review.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		s.announce(ctx, review, "mirror missing on update")
		return review, nil
	case err != nil:
		return review, s.mirrorFailed(ctx, "update review", review, err)
	}
	if err := s.reviews.PutMirror(ctx, review); err != nil {
		return review, s.mirrorFailed(ctx, "update review", review, err)
	}
	return review, nil
}

// Delete removes one of the user's reviews, mirror first.
func (s *ReviewService) Delete(ctx context.Context, sess *state.Session, reviewID string) error {
	user, err := sess.CurrentUser()
	if err != nil {
		return err
	}
	review, err := s.owned(ctx, user, reviewID)
	if err != nil {
		return err
	}

	if err := s.reviews.DeleteMirror(ctx, review.ProductID, review.ID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		return s.mirrorFailed(ctx, "delete review", review, err)
	}
	slog.Info("Review deleted", "review_id", review.ID, "uid", user.UID)
	return nil
}

func (s *ReviewService) owned(ctx context.Context, user entity.AuthUser, reviewID string) (entity.Review, error) {
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return entity.Review{}, fmt.Errorf("failed to load review: %w", err)
	}
	if review.UserID != user.UID {
		return entity.Review{}, apperr.ErrForbidden
	}
	return review, nil
}

// mirrorFailed logs and announces a partial write, and returns it as an
// error. Nothing already written is rolled back.
func (s *ReviewService) mirrorFailed(ctx context.Context, op string, review entity.Review, cause error) error {
	slog.Error("Review mirror out of sync", "op", op, "review_id", review.ID, "product_id", review.ProductID, "err", cause)
	s.announce(ctx, review, cause.Error())
	return &apperr.PartialWriteError{Op: op, Completed: 1, Failed: 1, Err: cause}
}

func (s *ReviewService) announce(ctx context.Context, review entity.Review, reason string) {
	event := entity.ReviewMirrorFailed{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Reason:    reason,
		FailedAt:  s.now(),
	}
	if err := s.publisher.PublishEvent(ctx, messaging.TopicReviewMirrorFailed, review.ID, event); err != nil {
		slog.Error("Failed to publish ReviewMirrorFailed", "review_id", review.ID, "err", err)
	}
}

// ListByUser returns the user's reviews, newest first, with their products.
// Reviews of products that no longer exist are skipped.
func (s *ReviewService) ListByUser(ctx context.Context, uid string) ([]entity.ReviewWithProduct, error) {
	reviews, err := s.reviews.FindByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	out := make([]entity.ReviewWithProduct, 0, len(reviews))
	for _, r := range reviews {
		p, err := s.products.FindByID(ctx, r.ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product of review %s: %w", r.ID, err)
		}
		out = append(out, entity.ReviewWithProduct{Review: r, Product: p})
	}
	return out, nil
}

// ListByProduct reads the product's mirror.
func (s *ReviewService) ListByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	reviews, err := s.reviews.ListMirror(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product reviews: %w", err)
	}
	return reviews, nil
}

// ReviewableProducts lists products from the user's delivered orders that
// the user has not reviewed yet, in order of first appearance.
func (s *ReviewService) ReviewableProducts(ctx context.Context, uid string) ([]entity.Product, error) {
	delivered, err := s.orders.FindByUserAndStatus(ctx, uid, entity.OrderStatusDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivered orders: %w", err)
	}
	reviews, err := s.reviews.FindByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	seen := make(map[string]bool, len(reviews))
	for _, r := range reviews {
		seen[r.ProductID] = true
	}
	var products []entity.Product
	for _, o := range delivered {
		for _, id := range o.ProductIDs() {
			if seen[id] {
				continue
			}
			seen[id] = true
			p, err := s.products.FindByID(ctx, id)
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to load product %s: %w", id, err)
			}
			products = append(products, p)
		}
	}
	return products, nil
}

// RepairAction tells what RepairMirror did.
type RepairAction string

const (
	RepairInSync    RepairAction = "in_sync"
	RepairRewritten RepairAction = "rewritten"
	RepairRemoved   RepairAction = "removed_orphan"
)

// RepairMirror brings the mirror of reviewID back in line with the global
// review: it is rewritten when missing or stale and removed when the global
// review is gone.
func (s *ReviewService) RepairMirror(ctx context.Context, reviewID, productID string) (RepairAction, error) {
	review, err := s.reviews.Get(ctx, reviewID)
	if errors.Is(err, apperr.ErrNotFound) {
		if err := s.reviews.DeleteMirror(ctx, productID, reviewID); err != nil {
			return "", fmt.Errorf("failed to remove orphan mirror: %w", err)
		}
		return RepairRemoved, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load review: %w", err)
	}

	mirror, err := s.reviews.GetMirror(ctx, review.ProductID, review.ID)
	if err == nil && mirrorMatches(review, mirror) {
		return RepairInSync, nil
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return "", fmt.Errorf("failed to load mirror: %w", err)
	}
	if err := s.reviews.PutMirror(ctx, review); err != nil {
		return "", fmt.Errorf("failed to rewrite mirror: %w", err)
	}
	return RepairRewritten, nil
}

func mirrorMatches(review, mirror entity.Review) bool {
	return review.Rating == mirror.Rating &&
		review.Text == mirror.Text &&
		review.UserName == mirror.UserName &&
		review.UpdatedAt.Equal(mirror.UpdatedAt)
}

// RepairReport summarizes RepairAll.
type RepairReport struct {
	Checked   int `json:"checked"`
	Rewritten int `json:"rewritten"`
	Failed    int `json:"failed"`
}

// RepairAll checks the mirror of every review. Failures are counted and
// logged; the scan goes on.
func (s *ReviewService) RepairAll(ctx context.Context) (RepairReport, error) {
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		return RepairReport{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	var report RepairReport
	for _, r := range reviews {
		report.Checked++
		action, err := s.RepairMirror(ctx, r.ID, r.ProductID)
		if err != nil {
			report.Failed++
			slog.Error("Failed to repair review mirror", "review_id", r.ID, "err", err)
			continue
		}
		if action == RepairRewritten {
			report.Rewritten++
		}
	}
	return report, nil
}

// HandleMirrorFailed is the consumer of reviews.mirror_failed.
func (s *ReviewService) HandleMirrorFailed(ctx context.Context, event entity.Event) error {
	e, ok := event.(entity.ReviewMirrorFailed)
	if !ok {
		return nil
	}
	action, err := s.RepairMirror(ctx, e.ReviewID, e.ProductID)
	if err != nil {
		return err
	}
	slog.Info("Review mirror repaired", "review_id", e.ReviewID, "action", action)
	return nil
}
