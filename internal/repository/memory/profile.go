package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
)

// ProfileRepository keeps user profiles by uid.
type ProfileRepository struct {
	hooks

	mu       sync.RWMutex
	profiles map[string]entity.UserProfile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]entity.UserProfile)}
}

func (r *ProfileRepository) Get(ctx context.Context, uid string) (entity.UserProfile, error) {
	if err := r.enter("Get"); err != nil {
		return entity.UserProfile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[uid]
	if !ok {
		return entity.UserProfile{}, fmt.Errorf("profile %s: %w", uid, apperr.ErrNotFound)
	}
	return p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile entity.UserProfile) error {
	if err := r.enter("Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UID] = profile
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, uid string, update entity.ProfileUpdate) error {
	if err := r.enter("Update"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return fmt.Errorf("profile %s: %w", uid, apperr.ErrNotFound)
	}
	p.Name = update.Name
	p.Phone = update.Phone
	p.Address = update.Address
	if update.ProfilePic != "" {
		p.ProfilePic = update.ProfilePic
	}
	r.profiles[uid] = p
	return nil
}

func (r *ProfileRepository) SetPaymentMethods(ctx context.Context, uid string, methods []entity.PaymentMethod) error {
	if err := r.enter("SetPaymentMethods"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return fmt.Errorf("profile %s: %w", uid, apperr.ErrNotFound)
	}
	p.PaymentMethods = append([]entity.PaymentMethod(nil), methods...)
	r.profiles[uid] = p
	return nil
}
