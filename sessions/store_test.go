package sessions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "complex_password_at_least_32_characters_long"
	testCookieName = "shopify_customer_session"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, opts ...sessions.StoreOption) *sessions.Store {
	t.Helper()
	opts = append([]sessions.StoreOption{sessions.WithNowTime(func() time.Time { return fixedNow })}, opts...)
	s, err := sessions.NewStore(testSecret, testCookieName, opts...)
	require.NoError(t, err)
	return s
}

// roundTrip saves sess and returns a request carrying the resulting cookie.
func roundTrip(t *testing.T, store *sessions.Store, sess *sessions.Session) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestIsExpired(t *testing.T) {
	past := fixedNow.Add(-time.Minute)
	future := fixedNow.Add(time.Minute)

	tests := []struct {
		name    string
		session *sessions.Session
		want    bool
	}{
		{"nil session", nil, true},
		{"no expiry", &sessions.Session{IsLoggedIn: true, AccessToken: "t"}, true},
		{"past", &sessions.Session{ExpiresAt: &past}, true},
		{"exactly now", &sessions.Session{ExpiresAt: &fixedNow}, true},
		{"future", &sessions.Session{ExpiresAt: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sessions.IsExpired(tt.session, fixedNow))
		})
	}
}

func TestNewStore_RejectsShortSecret(t *testing.T) {
	_, err := sessions.NewStore("too-short", testCookieName)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newStore(t, sessions.WithSecure(true))

	sess := sessions.Default()
	sess.LogIn("customer-token", fixedNow.Add(time.Hour))

	req, cookie := roundTrip(t, store, sess)

	require.Equal(t, testCookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
	require.NotContains(t, cookie.Value, "customer-token")

	loaded := store.Load(req)
	require.True(t, loaded.IsLoggedIn)
	require.Equal(t, "customer-token", loaded.AccessToken)
	require.True(t, loaded.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	require.False(t, sessions.IsExpired(loaded, fixedNow))
}

func TestStore_LoadFallsBackToDefault(t *testing.T) {
	store := newStore(t)

	t.Run("no cookie", func(t *testing.T) {
		loaded := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, sessions.Default(), loaded)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: "not-a-session"})
		require.False(t, store.Load(req).IsLoggedIn)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		sess := sessions.Default()
		sess.LogIn("customer-token", fixedNow.Add(time.Hour))
		value, err := store.Encode(sess)
		require.NoError(t, err)

		b := []byte(value)
		if b[len(b)-2] == 'A' {
			b[len(b)-2] = 'B'
		} else {
			b[len(b)-2] = 'A'
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: string(b)})
		require.False(t, store.Load(req).IsLoggedIn)
	})

	t.Run("different secret", func(t *testing.T) {
		other, err := sessions.NewStore("another_password_that_is_at_least_32_bytes", testCookieName)
		require.NoError(t, err)
		sess := sessions.Default()
		sess.LogIn("customer-token", fixedNow.Add(time.Hour))
		req, _ := roundTrip(t, other, sess)
		require.False(t, store.Load(req).IsLoggedIn)
	})

	t.Run("different cookie name", func(t *testing.T) {
		other, err := sessions.NewStore(testSecret, "other_cookie")
		require.NoError(t, err)
		value, err := other.Encode(&sessions.Session{IsLoggedIn: true, AccessToken: "x"})
		require.NoError(t, err)
		_, err = store.Decode(value)
		require.Error(t, err)
	})
}

func TestStore_ClearedSessionPersists(t *testing.T) {
	store := newStore(t)

	sess := sessions.Default()
	sess.LogIn("customer-token", fixedNow.Add(time.Hour))
	sess.Clear()

	req, _ := roundTrip(t, store, sess)
	loaded := store.Load(req)
	require.False(t, loaded.IsLoggedIn)
	require.Empty(t, loaded.AccessToken)
	require.Nil(t, loaded.ExpiresAt)
}

func TestStore_DecodeEnforcesLoggedInInvariant(t *testing.T) {
	store := newStore(t)
	value, err := store.Encode(&sessions.Session{IsLoggedIn: true})
	require.NoError(t, err)

	sess, err := store.Decode(value)
	require.NoError(t, err)
	require.False(t, sess.IsLoggedIn)
}
