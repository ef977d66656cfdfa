package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/assets"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// Picture is an optional profile image attached to an update.
type Picture struct {
	Filename string
	Content  io.Reader
}

// ProfileUpdateRequest is the profile form.
type ProfileUpdateRequest struct {
	Name    string         `json:"name"`
	Phone   string         `json:"phone"`
	Address entity.Address `json:"address"`
	Picture *Picture       `json:"-"`
}

type ProfileService struct {
	profiles repository.ProfileRepository
	uploader assets.Uploader
}

func NewProfileService(profiles repository.ProfileRepository, uploader assets.Uploader) *ProfileService {
	return &ProfileService{profiles: profiles, uploader: uploader}
}

func (s *ProfileService) Profile(ctx context.Context, uid string) (entity.UserProfile, error) {
	p, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return entity.UserProfile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

// UpdateProfile uploads the picture if one is attached, saves the form and
// tells the session about the new name and picture.
func (s *ProfileService) UpdateProfile(ctx context.Context, sess *state.Session, req ProfileUpdateRequest) (entity.UserProfile, error) {
	user, err := sess.CurrentUser()
	if err != nil {
		return entity.UserProfile{}, err
	}
	update := entity.ProfileUpdate{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: req.Address,
	}
	if update.Name == "" {
		return entity.UserProfile{}, apperr.Invalid("name", "Please enter your name.")
	}

	if req.Picture != nil {
		if s.uploader == nil {
			return entity.UserProfile{}, apperr.Invalid("picture", "Picture uploads are not available.")
		}
		url, err := s.uploader.Upload(ctx, req.Picture.Filename, req.Picture.Content)
		if err != nil {
			return entity.UserProfile{}, fmt.Errorf("failed to upload profile picture: %w", err)
		}
		update.ProfilePic = url
	}

	if err := s.profiles.Update(ctx, user.UID, update); err != nil {
		return entity.UserProfile{}, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := sess.Publish(ctx, entity.UserProfileUpdated{Name: update.Name, ProfilePic: update.ProfilePic}); err != nil {
		return entity.UserProfile{}, fmt.Errorf("failed to publish profile update: %w", err)
	}
	slog.Info("Profile updated", "uid", user.UID, "picture", update.ProfilePic != "")
	return s.Profile(ctx, user.UID)
}

// AddPaymentMethod validates in and saves it, replacing a matching card or
// UPI id.
func (s *ProfileService) AddPaymentMethod(ctx context.Context, uid string, in entity.PaymentMethodInput) ([]entity.PaymentMethod, error) {
	method, err := in.Validate()
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, uid)
	if err != nil {
		return nil, err
	}
	methods := entity.MergePaymentMethod(profile.PaymentMethods, method)
	if err := s.profiles.SetPaymentMethods(ctx, uid, methods); err != nil {
		return nil, fmt.Errorf("failed to save payment method: %w", err)
	}
	return methods, nil
}

// RemovePaymentMethod drops the method at index.
func (s *ProfileService) RemovePaymentMethod(ctx context.Context, uid string, index int) ([]entity.PaymentMethod, error) {
	profile, err := s.Profile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(profile.PaymentMethods) {
		return nil, apperr.Invalid("index", "No such payment method.")
	}
	methods := append(profile.PaymentMethods[:index:index], profile.PaymentMethods[index+1:]...)
	if err := s.profiles.SetPaymentMethods(ctx, uid, methods); err != nil {
		return nil, fmt.Errorf("failed to remove payment method: %w", err)
	}
	return methods, nil
}
