package config

import "time"

const (
	defaultSessionCookieName = "shopify_customer_session"
	sessionMaxAge            = 7 * 24 * time.Hour
)

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
	GetSessionMaxAge() time.Duration
}

type Session struct {
	secret     string
	cookieName string
}

var _ SessionConfig = Session{}

func loadSession(lookup LookupFunc) Session {
	return Session{
		secret:     lookup("SESSION_SECRET"),
		cookieName: valueOr(lookup, "SESSION_COOKIE_NAME", defaultSessionCookieName),
	}
}

// GetSessionSecret must be at least 32 bytes; the session store refuses shorter secrets.
func (s Session) GetSessionSecret() string {
	return s.secret
}

func (s Session) GetSessionCookieName() string {
	return s.cookieName
}

func (Session) GetSessionMaxAge() time.Duration {
	return sessionMaxAge
}
