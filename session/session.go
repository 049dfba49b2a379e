package session

import (
	"strings"
	"time"
)

// Session is an authenticated identity plus its bearer credentials, held
// client-side until logout or expiry. The Store sets and clears the identity
// and the access token together; a Session with one but not the other never
// exists.
type Session struct {
	UserID       string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"-"` // never serialized into the user record
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// DisplayName is the human-facing name, falling back to the email address
// when the profile has no name fields.
func (s *Session) DisplayName() string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		return s.Email
	}
	return name
}

// Expired reports whether the session's token lifetime has elapsed. A zero
// ExpiresAt means the expiry is unknown and the session is trusted until the
// server says otherwise.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
