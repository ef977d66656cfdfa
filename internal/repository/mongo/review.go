package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type reviewRepository struct {
	reviews *mongo.Collection
	mirrors *mongo.Collection
}

// NewReviewRepository creates a new ReviewRepository backed by MongoDB. The
// per-product mirror lives in its own collection keyed by productId/reviewId.
func NewReviewRepository(db *mongo.Database) repository.ReviewRepository {
	return &reviewRepository{
		reviews: db.Collection(reviewsCollection),
		mirrors: db.Collection(productReviewsCollection),
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

func (r *reviewRepository) Create(ctx context.Context, review entity.Review) (string, error) {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	doc := bson.M(review.Document())
	doc["_id"] = review.ID
	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create review: %w", translateError(err))
	}
	return review.ID, nil
}

func (r *reviewRepository) Get(ctx context.Context, id string) (entity.Review, error) {
	review, err := findOne(ctx, r.reviews, bson.M{"_id": id}, entity.ReviewFromDocument)
	if err != nil {
		return entity.Review{}, fmt.Errorf("failed to get review %s: %w", id, err)
	}
	return review, nil
}

func (r *reviewRepository) Update(ctx context.Context, review entity.Review) error {
	res, err := r.reviews.UpdateOne(ctx, bson.M{"_id": review.ID}, bson.M{"$set": bson.M{
		"rating":    review.Rating,
		"text":      review.Text,
		"updatedAt": review.UpdatedAt,
	}})
	if err == nil && res.MatchedCount == 0 {
		err = mongo.ErrNoDocuments
	}
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, translateError(err))
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.reviews.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, translateError(err))
	}
	return nil
}

func (r *reviewRepository) FindByUserAndProduct(ctx context.Context, uid, productID string) ([]entity.Review, error) {
	reviews, err := findAll(ctx, r.reviews, bson.M{"userId": uid, "productId": productID}, nil, entity.ReviewFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews of %s for %s: %w", uid, productID, err)
	}
	return reviews, nil
}

func (r *reviewRepository) FindByUser(ctx context.Context, uid string) ([]entity.Review, error) {
	reviews, err := findAll(ctx, r.reviews, bson.M{"userId": uid}, newestFirst, entity.ReviewFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews of %s: %w", uid, err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListAll(ctx context.Context) ([]entity.Review, error) {
	reviews, err := findAll(ctx, r.reviews, bson.M{}, nil, entity.ReviewFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *reviewRepository) PutMirror(ctx context.Context, review entity.Review) error {
	id := compositeID(review.ProductID, review.ID)
	doc := bson.M(review.MirrorDocument())
	_, err := r.mirrors.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write mirror of review %s: %w", review.ID, translateError(err))
	}
	return nil
}

func (r *reviewRepository) GetMirror(ctx context.Context, productID, reviewID string) (entity.Review, error) {
	review, err := findOne(ctx, r.mirrors, bson.M{"_id": compositeID(productID, reviewID)}, entity.ReviewFromMirrorDocument)
	if err != nil {
		return entity.Review{}, fmt.Errorf("failed to get mirror of review %s: %w", reviewID, err)
	}
	return review, nil
}

func (r *reviewRepository) DeleteMirror(ctx context.Context, productID, reviewID string) error {
	if _, err := r.mirrors.DeleteOne(ctx, bson.M{"_id": compositeID(productID, reviewID)}); err != nil {
		return fmt.Errorf("failed to delete mirror of review %s: %w", reviewID, translateError(err))
	}
	return nil
}

func (r *reviewRepository) ListMirror(ctx context.Context, productID string) ([]entity.Review, error) {
	reviews, err := findAll(ctx, r.mirrors, bson.M{"productId": productID}, newestFirst, entity.ReviewFromMirrorDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of product %s: %w", productID, err)
	}
	return reviews, nil
}
