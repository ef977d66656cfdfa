package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type wishlistRepository struct {
	coll *mongo.Collection
}

// NewWishlistRepository creates a new WishlistRepository backed by MongoDB.
func NewWishlistRepository(db *mongo.Database) repository.WishlistRepository {
	return &wishlistRepository{coll: db.Collection(wishlistCollection)}
}

func (r *wishlistRepository) List(ctx context.Context, uid string) ([]entity.WishlistItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}})
	items, err := findAll(ctx, r.coll, bson.M{"uid": uid}, opts, entity.WishlistItemFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist of %s: %w", uid, err)
	}
	return items, nil
}

func (r *wishlistRepository) Put(ctx context.Context, uid string, item entity.WishlistItem) error {
	doc := bson.M(item.Document())
	doc["uid"] = uid
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": compositeID(uid, item.ID)}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to add %s to wishlist of %s: %w", item.ID, uid, translateError(err))
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, uid, productID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": compositeID(uid, productID)}); err != nil {
		return fmt.Errorf("failed to remove %s from wishlist of %s: %w", productID, uid, translateError(err))
	}
	return nil
}

func (r *wishlistRepository) Clear(ctx context.Context, uid string) error {
	total, err := r.coll.CountDocuments(ctx, bson.M{"uid": uid})
	if err != nil {
		return fmt.Errorf("failed to count wishlist of %s: %w", uid, translateError(err))
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"uid": uid})
	if err != nil {
		var deleted int64
		if res != nil {
			deleted = res.DeletedCount
		}
		return &apperr.PartialWriteError{
			Op:        "clear wishlist",
			Completed: int(deleted),
			Failed:    int(total - deleted),
			Err:       translateError(err),
		}
	}
	return nil
}
