package sessions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultMaxAge = 7 * 24 * time.Hour

// Store reads and writes the session cookie. It keeps no server side state.
type Store struct {
	codec   *Codec
	name    string
	secure  bool
	maxAge  time.Duration
	nowTime func() time.Time
}

type StoreOption func(*Store)

// WithSecure sets the Secure cookie flag; enabled in production.
func WithSecure(secure bool) StoreOption {
	return func(s *Store) {
		s.secure = secure
	}
}

func WithMaxAge(d time.Duration) StoreOption {
	return func(s *Store) {
		s.maxAge = d
	}
}

// WithNowTime sets the clock used for expiry checks (primarily for testing).
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func NewStore(secret, cookieName string, opts ...StoreOption) (*Store, error) {
	codec, err := NewCodec(secret, cookieName)
	if err != nil {
		return nil, err
	}
	s := &Store{
		codec:   codec,
		name:    cookieName,
		maxAge:  defaultMaxAge,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns the request's session, or a fresh default session when the cookie is
// missing, undecryptable or malformed. It never fails.
func (s *Store) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return Default()
	}
	session, err := s.Decode(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding unreadable session cookie")
		return Default()
	}
	return session
}

// Save seals the session into the response cookie. Callers mutate first, then Save.
func (s *Store) Save(w http.ResponseWriter, session *Session) error {
	value, err := s.Encode(session)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.maxAge.Seconds()),
		Expires:  s.nowTime().Add(s.maxAge),
	})
	return nil
}

func (s *Store) Encode(session *Session) (string, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("[sessions Encode] marshal: %w", err)
	}
	return s.codec.Seal(payload)
}

func (s *Store) Decode(value string) (*Session, error) {
	payload, err := s.codec.Open(value)
	if err != nil {
		return nil, err
	}
	session := Default()
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("[sessions Decode] unmarshal: %w", err)
	}
	if session.IsLoggedIn && session.AccessToken == "" {
		session.Clear()
	}
	return session, nil
}
