// Package firestore implements the repositories on Cloud Firestore, the
// document store the storefront was built on.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firestoreGo "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kareempogba0/B-Laban/internal/apperr"
)

const (
	productsCollection = "products"
	usersCollection    = "users"
	ordersCollection   = "orders"
	reviewsCollection  = "reviews"
	wishlistCollection = "wishlist"

	legacyWishlistsCollection = "wishlists"
	legacyWishlistItems       = "items"
)

// translateError maps gRPC status codes onto the apperr sentinels. The
// original error stays in the chain.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %w", apperr.ErrPermissionDenied, err)
	case codes.FailedPrecondition:
		// Firestore answers queries lacking a composite index this way.
		return fmt.Errorf("%w: %w", apperr.ErrIndexRequired, err)
	}
	return err
}

// getAll drains iter and decodes every snapshot with decode.
func getAll[T any](iter *firestoreGo.DocumentIterator, decode func(id string, data map[string]any) (T, error)) ([]T, error) {
	defer iter.Stop()

	var out []T
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, translateError(err)
		}
		out = collect(out, snap.Ref.ID, snap.Data(), decode)
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

func getDoc(ctx context.Context, ref *firestoreGo.DocumentRef) (*firestoreGo.DocumentSnapshot, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	if !snap.Exists() {
		return nil, apperr.ErrNotFound
	}
	return snap, nil
}
