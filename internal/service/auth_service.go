package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kareempogba0/B-Laban/internal/apperr"
	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/identity"
	"github.com/kareempogba0/B-Laban/internal/repository"
	"github.com/kareempogba0/B-Laban/internal/state"
)

// SignInMethod tells the bridge how the browser obtained the ID token.
type SignInMethod string

const (
	// SignInRestore is the provider's initial state callback on page load.
	SignInRestore  SignInMethod = "restore"
	SignInPassword SignInMethod = "password"
	SignInPopup    SignInMethod = "popup"
	SignInSignup   SignInMethod = "signup"
)

func (m SignInMethod) valid() bool {
	switch m {
	case SignInRestore, SignInPassword, SignInPopup, SignInSignup:
		return true
	}
	return false
}

// SignInRequest is one sign-in notification from the browser.
type SignInRequest struct {
	IDToken string       `json:"idToken"`
	Method  SignInMethod `json:"method"`
	// Name is the name typed into the sign-up form.
	Name string `json:"name,omitempty"`
}

// AuthService reconciles the identity provider's user with the profile
// document and publishes the result on the session bus.
type AuthService struct {
	provider identity.Provider
	profiles repository.ProfileRepository
	wishlist *WishlistService
	now      func() time.Time
}

func NewAuthService(provider identity.Provider, profiles repository.ProfileRepository, wishlist *WishlistService) *AuthService {
	return &AuthService{provider: provider, profiles: profiles, wishlist: wishlist, now: time.Now}
}

// SignIn verifies the token, resolves the profile and publishes
// UserSignedIn. The wishlist is loaded afterwards; a failed load is logged
// and does not undo the sign-in.
func (s *AuthService) SignIn(ctx context.Context, sess *state.Session, req SignInRequest) (entity.FullUser, error) {
	if req.Method == "" {
		req.Method = SignInRestore
	}
	if !req.Method.valid() {
		return entity.FullUser{}, apperr.Invalid("method", "Unknown sign-in method.")
	}

	user, err := s.provider.Verify(ctx, req.IDToken)
	if err != nil {
		return entity.FullUser{}, err
	}

	full, err := s.resolveProfile(ctx, user, req)
	if err != nil {
		return entity.FullUser{}, err
	}

	if err := sess.Publish(ctx, entity.UserSignedIn{User: full}); err != nil {
		return entity.FullUser{}, fmt.Errorf("failed to publish sign-in: %w", err)
	}
	slog.Info("User signed in", "session_id", sess.ID, "uid", user.UID, "method", req.Method)

	if err := s.wishlist.Load(ctx, sess); err != nil {
		slog.Error("Failed to load wishlist after sign-in", "session_id", sess.ID, "uid", user.UID, "err", err)
	}
	return full, nil
}

func (s *AuthService) resolveProfile(ctx context.Context, user identity.User, req SignInRequest) (entity.FullUser, error) {
	full := entity.FullUser{User: entity.AuthUser{UID: user.UID, Email: user.Email}}

	profile, err := s.profiles.Get(ctx, user.UID)
	switch {
	case err == nil:
		full.Name = profile.Name
		full.ProfilePic = profile.ProfilePic
		return full, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return entity.FullUser{}, fmt.Errorf("failed to load profile: %w", err)
	}

	switch req.Method {
	case SignInSignup:
		full.Name = firstNonEmpty(user.DisplayName, req.Name, "New User")
		full.ProfilePic = firstNonEmpty(user.PhotoURL, identity.InitialsAvatar(firstNonEmpty(user.DisplayName, req.Name, user.Email)))
	case SignInPopup:
		full.Name = firstNonEmpty(user.DisplayName, user.Email)
		full.ProfilePic = firstNonEmpty(user.PhotoURL, identity.InitialsAvatar(user.Email))
	default:
		// Account without a profile document: show the email, persist nothing.
		full.Name = user.Email
		return full, nil
	}

	profile = entity.UserProfile{
		UID:        user.UID,
		Email:      user.Email,
		Name:       full.Name,
		ProfilePic: full.ProfilePic,
		Address:    entity.Address{Country: entity.DefaultCountry},
		CreatedAt:  s.now(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return entity.FullUser{}, fmt.Errorf("failed to create profile: %w", err)
	}
	slog.Info("Created profile", "uid", user.UID, "method", req.Method)
	return full, nil
}

// SignOut publishes UserSignedOut. Every container of the session resets
// on its own.
func (s *AuthService) SignOut(ctx context.Context, sess *state.Session) error {
	if err := sess.Publish(ctx, entity.UserSignedOut{SignedOutAt: s.now()}); err != nil {
		return fmt.Errorf("failed to publish sign-out: %w", err)
	}
	slog.Info("User signed out", "session_id", sess.ID)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
