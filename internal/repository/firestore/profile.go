package firestore

import (
	"context"
	"fmt"

	firestoreGo "cloud.google.com/go/firestore"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type profileRepository struct {
	client *firestoreGo.Client
}

// NewProfileRepository creates a new ProfileRepository backed by Firestore.
func NewProfileRepository(client *firestoreGo.Client) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func (r *profileRepository) doc(uid string) *firestoreGo.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

func (r *profileRepository) Get(ctx context.Context, uid string) (entity.UserProfile, error) {
	snap, err := getDoc(ctx, r.doc(uid))
	if err != nil {
		return entity.UserProfile{}, fmt.Errorf("failed to get profile %s: %w", uid, err)
	}
	return entity.ProfileFromDocument(uid, snap.Data())
}

func (r *profileRepository) Create(ctx context.Context, profile entity.UserProfile) error {
	if _, err := r.doc(profile.UID).Set(ctx, profile.Document()); err != nil {
		return fmt.Errorf("failed to create profile %s: %w", profile.UID, translateError(err))
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, uid string, update entity.ProfileUpdate) error {
	updates := []firestoreGo.Update{
		{Path: "name", Value: update.Name},
		{Path: "phone", Value: update.Phone},
		{Path: "address", Value: update.Address.Document()},
	}
	if update.ProfilePic != "" {
		updates = append(updates, firestoreGo.Update{Path: "profilePic", Value: update.ProfilePic})
	}
	if _, err := r.doc(uid).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update profile %s: %w", uid, translateError(err))
	}
	return nil
}

func (r *profileRepository) SetPaymentMethods(ctx context.Context, uid string, methods []entity.PaymentMethod) error {
	docs := make([]any, 0, len(methods))
	for _, m := range methods {
		docs = append(docs, m.Document())
	}
	if _, err := r.doc(uid).Update(ctx, []firestoreGo.Update{{Path: "paymentMethods", Value: docs}}); err != nil {
		return fmt.Errorf("failed to save payment methods for %s: %w", uid, translateError(err))
	}
	return nil
}
