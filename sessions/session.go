package sessions

import (
	"time"
)

// Session is the customer session held client side in an encrypted cookie.
// IsLoggedIn implies AccessToken is set and was not expired at the last check.
type Session struct {
	AccessToken string     `json:"customerAccessToken,omitempty"`
	ExpiresAt   *time.Time `json:"tokenExpiresAt,omitempty"`
	IsLoggedIn  bool       `json:"isLoggedIn"`
}

// Default is the session used when no valid cookie is present.
func Default() *Session {
	return &Session{IsLoggedIn: false}
}

// LogIn populates the session from a freshly issued access token.
func (s *Session) LogIn(accessToken string, expiresAt time.Time) {
	exp := expiresAt.UTC()
	s.AccessToken = accessToken
	s.ExpiresAt = &exp
	s.IsLoggedIn = true
}

// Clear resets the session to the logged out state. It does not persist.
func (s *Session) Clear() {
	s.AccessToken = ""
	s.ExpiresAt = nil
	s.IsLoggedIn = false
}

// HasToken reports whether the session claims a logged in customer with a token.
func (s *Session) HasToken() bool {
	return s.IsLoggedIn && s.AccessToken != ""
}

// IsExpired is true when expiresAt is absent or not strictly after now.
func IsExpired(s *Session, now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return true
	}
	return !s.ExpiresAt.After(now)
}
