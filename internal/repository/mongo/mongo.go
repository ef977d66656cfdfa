// Package mongo implements the repositories on MongoDB. Document shapes
// match the Firestore layout; sub-collections become flat collections keyed
// by their parent id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kareempogba0/B-Laban/internal/apperr"
)

const (
	productsCollection       = "products"
	usersCollection          = "users"
	ordersCollection         = "orders"
	reviewsCollection        = "reviews"
	productReviewsCollection = "product_reviews"
	wishlistCollection       = "wishlist_items"
)

// Connect opens a client and verifies the connection.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	slog.Info("Connected to MongoDB", "database", database)
	return client.Database(database), nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 13: // Unauthorized
			return fmt.Errorf("%w: %w", apperr.ErrPermissionDenied, err)
		case 291: // NoQueryExecutionPlans
			return fmt.Errorf("%w: %w", apperr.ErrIndexRequired, err)
		}
	}
	return err
}

// findAll runs filter and decodes each document with decode. The decoder
// receives the string form of _id.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, decode func(id string, data map[string]any) (T, error)) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateError(err)
	}
	defer cursor.Close(ctx)

	var out []T
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			slog.Warn("Skipping undecodable document", "collection", coll.Name(), "err", err)
			continue
		}
		id, data := splitID(raw)
		out = collect(out, id, data, decode)
	}
	if err := cursor.Err(); err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// collect appends the decoded document to out. Documents that fail to decode
// are logged and skipped.
func collect[T any](out []T, id string, data map[string]any, decode func(id string, data map[string]any) (T, error)) []T {
	v, err := decode(id, data)
	if err != nil {
		slog.Warn("Skipping malformed document", "doc_id", id, "err", err)
		return out
	}
	return append(out, v)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, decode func(id string, data map[string]any) (T, error)) (T, error) {
	var zero T
	var raw bson.M
	if err := coll.FindOne(ctx, filter).Decode(&raw); err != nil {
		return zero, translateError(err)
	}
	id, data := splitID(raw)
	return decode(id, data)
}

func splitID(raw bson.M) (string, map[string]any) {
	data := normalize(raw).(map[string]any)
	id, _ := data["_id"].(string)
	delete(data, "_id")
	return id, data
}

// normalize turns driver types into the plain Go values the entity decoders
// understand.
func normalize(v any) any {
	switch v := v.(type) {
	case bson.M:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalize(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalize(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalize(val)
		}
		return out
	case primitive.DateTime:
		return v.Time()
	case primitive.ObjectID:
		return v.Hex()
	case int32:
		return int64(v)
	default:
		return v
	}
}

func compositeID(parent, child string) string {
	return parent + "/" + child
}
