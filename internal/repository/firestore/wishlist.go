package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firestoreGo "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type wishlistRepository struct {
	client *firestoreGo.Client
}

// NewWishlistRepository creates a WishlistRepository backed by Firestore.
// The returned value also migrates legacy wishlists.
func NewWishlistRepository(client *firestoreGo.Client) interface {
	repository.WishlistRepository
	repository.WishlistMigrator
} {
	return &wishlistRepository{client: client}
}

func (r *wishlistRepository) items(uid string) *firestoreGo.CollectionRef {
	return r.client.Collection(usersCollection).Doc(uid).Collection(wishlistCollection)
}

func (r *wishlistRepository) List(ctx context.Context, uid string) ([]entity.WishlistItem, error) {
	items, err := getAll(r.items(uid).Documents(ctx), entity.WishlistItemFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist of %s: %w", uid, err)
	}
	return items, nil
}

func (r *wishlistRepository) Put(ctx context.Context, uid string, item entity.WishlistItem) error {
	if _, err := r.items(uid).Doc(item.ID).Set(ctx, item.Document()); err != nil {
		return fmt.Errorf("failed to add %s to wishlist of %s: %w", item.ID, uid, translateError(err))
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, uid, productID string) error {
	if _, err := r.items(uid).Doc(productID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to remove %s from wishlist of %s: %w", productID, uid, translateError(err))
	}
	return nil
}

func (r *wishlistRepository) Clear(ctx context.Context, uid string) error {
	refs, err := r.items(uid).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to enumerate wishlist of %s: %w", uid, translateError(err))
	}
	return bulkDelete(ctx, r.client, "clear wishlist", refs)
}

// bulkDelete deletes refs with a BulkWriter. Every delete is attempted; the
// first failure is reported as a partial write.
func bulkDelete(ctx context.Context, client *firestoreGo.Client, op string, refs []*firestoreGo.DocumentRef) error {
	if len(refs) == 0 {
		return nil
	}
	bw := client.BulkWriter(ctx)
	jobs := make([]*firestoreGo.BulkWriterJob, 0, len(refs))
	var firstErr error
	failed := 0
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed > 0 {
		return &apperr.PartialWriteError{
			Op:        op,
			Completed: len(refs) - failed,
			Failed:    failed,
			Err:       translateError(firstErr),
		}
	}
	return nil
}

// MigrateLegacy copies every wishlists/{uid}/items/{id} document to
// users/{uid}/wishlist/{id} and deletes the legacy copy once written.
// Parent documents of the legacy path usually do not exist, hence the
// DocumentRefs enumeration.
func (r *wishlistRepository) MigrateLegacy(ctx context.Context) (repository.MigrationReport, error) {
	var report repository.MigrationReport

	parents := r.client.Collection(legacyWishlistsCollection).DocumentRefs(ctx)
	for {
		parent, err := parents.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("failed to enumerate legacy wishlists: %w", translateError(err))
		}
		report.Users++

		snaps, err := parent.Collection(legacyWishlistItems).Documents(ctx).GetAll()
		if err != nil {
			return report, fmt.Errorf("failed to read legacy wishlist of %s: %w", parent.ID, translateError(err))
		}

		var migrated []*firestoreGo.DocumentRef
		for _, snap := range snaps {
			item, err := entity.WishlistItemFromDocument(snap.Ref.ID, snap.Data())
			if err != nil {
				slog.Warn("Skipping malformed legacy wishlist item", "uid", parent.ID, "doc_id", snap.Ref.ID, "err", err)
				report.Failed++
				continue
			}
			if err := r.Put(ctx, parent.ID, item); err != nil {
				slog.Error("Failed to migrate wishlist item", "uid", parent.ID, "product_id", item.ID, "err", err)
				report.Failed++
				continue
			}
			report.Copied++
			migrated = append(migrated, snap.Ref)
		}

		if err := bulkDelete(ctx, r.client, "delete legacy wishlist", migrated); err != nil {
			slog.Error("Failed to delete legacy wishlist items", "uid", parent.ID, "err", err)
		}
	}
	return report, nil
}
