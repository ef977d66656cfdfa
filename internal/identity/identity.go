// Package identity bridges to the external identity provider. Sign-in
// itself happens in the browser; the service only verifies the ID tokens it
// is handed and reads the provider's user record.
package identity

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/kareempogba0/B-Laban/internal/apperr"
)

// User is the provider's record of a signed-in account.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Provider verifies ID tokens.
type Provider interface {
	// Verify checks idToken and returns the current record of its user.
	// Rejections are *Error values.
	Verify(ctx context.Context, idToken string) (User, error)
}

// Error is a provider rejection with a message fit for the shopper.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("identity: %s", e.Code)
	}
	return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches apperr.ErrUnauthenticated and any Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Code == e.Code
	}
	return target == apperr.ErrUnauthenticated
}

func (e *Error) UserMessage() string { return e.Message }

var (
	ErrTokenExpired = &Error{Code: "id-token-expired", Message: "Your session has expired. Please sign in again."}
	ErrTokenRevoked = &Error{Code: "id-token-revoked", Message: "Your session was revoked. Please sign in again."}
	ErrTokenInvalid = &Error{Code: "invalid-id-token", Message: "We couldn't verify your sign-in. Please try again."}
	ErrUserNotFound = &Error{Code: "user-not-found", Message: "No account found with this email."}
	ErrUserDisabled = &Error{Code: "user-disabled", Message: "This account has been disabled."}
)

// Translate returns a copy of template carrying the provider's err.
func Translate(template *Error, err error) *Error {
	return &Error{Code: template.Code, Message: template.Message, Err: err}
}

// Disabled reports a disabled account.
func Disabled(uid string) *Error {
	return Translate(ErrUserDisabled, fmt.Errorf("account %s is disabled", uid))
}

// InitialsAvatar is the generated picture for accounts without a photo.
func InitialsAvatar(seed string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(seed)
}

// StaticProvider accepts a fixed set of tokens. It serves local development
// and tests.
type StaticProvider struct {
	mu     sync.RWMutex
	tokens map[string]User
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{tokens: make(map[string]User)}
}

// Register makes token resolve to user.
func (p *StaticProvider) Register(token string, user User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = user
}

// Revoke forgets token.
func (p *StaticProvider) Revoke(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, token)
}

func (p *StaticProvider) Verify(ctx context.Context, idToken string) (User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if idToken == "" {
		return User{}, Translate(ErrTokenInvalid, fmt.Errorf("empty token"))
	}
	u, ok := p.tokens[idToken]
	if !ok {
		return User{}, Translate(ErrTokenInvalid, fmt.Errorf("unknown token"))
	}
	return u, nil
}
