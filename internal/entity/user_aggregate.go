package entity

import "fmt"

// AuthStatus follows the session's user through sign-in and sign-out.
type AuthStatus string

const (
	AuthStatusIdle      AuthStatus = "idle"
	AuthStatusSucceeded AuthStatus = "succeeded"
)

// UserState is the session's view of who is signed in.
type UserState struct {
	CurrentUser *AuthUser  `json:"currentUser"`
	Name        string     `json:"name,omitempty"`
	ProfilePic  string     `json:"profilePic,omitempty"`
	Status      AuthStatus `json:"status"`
}

// InitialUserState is the signed-out state.
func InitialUserState() UserState {
	return UserState{Status: AuthStatusIdle}
}

// SignedIn reports whether a user is present.
func (s UserState) SignedIn() bool {
	return s.CurrentUser != nil
}

// UID returns the signed-in user's id, or "".
func (s UserState) UID() string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.UID
}

// FullUser returns the published record for the signed-in user.
func (s UserState) FullUser() (FullUser, bool) {
	if s.CurrentUser == nil {
		return FullUser{}, false
	}
	return FullUser{User: *s.CurrentUser, Name: s.Name, ProfilePic: s.ProfilePic}, true
}

// Reduce returns the state after e.
func (s UserState) Reduce(e Event) (UserState, error) {
	switch e := e.(type) {
	case UserSignedIn:
		user := e.User.User
		return UserState{
			CurrentUser: &user,
			Name:        e.User.Name,
			ProfilePic:  e.User.ProfilePic,
			Status:      AuthStatusSucceeded,
		}, nil
	case UserProfileUpdated:
		next := s
		if e.Name != "" {
			next.Name = e.Name
		}
		if e.ProfilePic != "" {
			next.ProfilePic = e.ProfilePic
		}
		return next, nil
	case UserSignedOut:
		return InitialUserState(), nil
	default:
		return s, fmt.Errorf("unknown event type for user: %s", e.EventType())
	}
}
