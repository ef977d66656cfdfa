package repository

import (
	"context"

	"github.com/kareempogba0/B-Laban/internal/entity"
)

// Lookups of a single record return apperr.ErrNotFound when it does not
// exist. Store-specific failures are translated to the apperr sentinels
// (ErrPermissionDenied, ErrIndexRequired) by each implementation.

// ProductRepository reads the catalog.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (entity.Product, error)
}

// ProfileRepository handles the users/{uid} profile documents.
type ProfileRepository interface {
	Get(ctx context.Context, uid string) (entity.UserProfile, error)
	Create(ctx context.Context, profile entity.UserProfile) error
	Update(ctx context.Context, uid string, update entity.ProfileUpdate) error
	SetPaymentMethods(ctx context.Context, uid string, methods []entity.PaymentMethod) error
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// Create stores the order and returns its id.
	Create(ctx context.Context, order entity.Order) (string, error)
	// FindByUser returns the user's orders, newest first.
	FindByUser(ctx context.Context, uid string) ([]entity.Order, error)
	// FindByUserAndStatus returns the user's orders whose decoded status is
	// status, whatever the casing of the stored label.
	FindByUserAndStatus(ctx context.Context, uid string, status entity.OrderStatus) ([]entity.Order, error)
}

// ReviewRepository handles the global reviews collection and the
// per-product mirror under products/{productId}/reviews/{reviewId}.
type ReviewRepository interface {
	// Create stores r in the global collection. An empty r.ID is assigned.
	Create(ctx context.Context, r entity.Review) (string, error)
	Get(ctx context.Context, id string) (entity.Review, error)
	Update(ctx context.Context, r entity.Review) error
	Delete(ctx context.Context, id string) error
	FindByUserAndProduct(ctx context.Context, uid, productID string) ([]entity.Review, error)
	// FindByUser returns the user's reviews, newest first.
	FindByUser(ctx context.Context, uid string) ([]entity.Review, error)
	ListAll(ctx context.Context) ([]entity.Review, error)

	// PutMirror creates or overwrites the mirror of r.
	PutMirror(ctx context.Context, r entity.Review) error
	GetMirror(ctx context.Context, productID, reviewID string) (entity.Review, error)
	DeleteMirror(ctx context.Context, productID, reviewID string) error
	ListMirror(ctx context.Context, productID string) ([]entity.Review, error)
}

// WishlistRepository handles users/{uid}/wishlist/{productId}.
type WishlistRepository interface {
	List(ctx context.Context, uid string) ([]entity.WishlistItem, error)
	Put(ctx context.Context, uid string, item entity.WishlistItem) error
	Delete(ctx context.Context, uid, productID string) error
	// Clear deletes every item best-effort. When some deletes fail the
	// error is an *apperr.PartialWriteError.
	Clear(ctx context.Context, uid string) error
}

// MigrationReport summarizes a legacy wishlist migration.
type MigrationReport struct {
	Users  int `json:"users"`
	Copied int `json:"copied"`
	Failed int `json:"failed"`
}

// WishlistMigrator moves wishlists stored under the legacy
// wishlists/{uid}/items path to the canonical one.
type WishlistMigrator interface {
	MigrateLegacy(ctx context.Context) (MigrationReport, error)
}

// EventStore handles appending and loading events for an aggregate stream.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error)
	DeleteStream(ctx context.Context, streamID string) error
}
