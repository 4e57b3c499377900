package identity_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/jrsteele09/storefront-dashboard/admin"
	"github.com/jrsteele09/storefront-dashboard/admin/fakeadmin"
	"github.com/jrsteele09/storefront-dashboard/identity"
	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"github.com/jrsteele09/storefront-dashboard/internal/utils"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/jrsteele09/storefront-dashboard/shops"
	"github.com/jrsteele09/storefront-dashboard/storefront"
	"github.com/jrsteele09/storefront-dashboard/storefront/fakestorefront"
	"github.com/jrsteele09/storefront-dashboard/verify"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const (
	testShop     = "test-shop.myshopify.com"
	testEmail    = "jane@example.com"
	testPassword = "hunter22"
	testCustGID  = "gid://shopify/Customer/123"
)

type fixture struct {
	resolver   *identity.Resolver
	storefront *fakestorefront.Server
	admin      *fakeadmin.Server
	shops      *shops.InMemoryRepo
	metrics    *metrics.Metrics
	now        time.Time
}

func newFixture(t *testing.T, opts ...identity.Option) *fixture {
	t.Helper()
	f := &fixture{
		storefront: fakestorefront.New(),
		admin:      fakeadmin.New(),
		shops:      shops.NewInMemoryRepo(),
		metrics:    metrics.New(),
		now:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	t.Cleanup(f.storefront.Close)
	t.Cleanup(f.admin.Close)
	f.storefront.NowTime = func() time.Time { return f.now }

	f.storefront.AddCustomer(testEmail, testPassword, storefront.Customer{
		ID:             testCustGID,
		FirstName:      utils.Ptr("Jane"),
		LastName:       utils.Ptr("Doe"),
		DisplayName:    "Jane Doe",
		Email:          testEmail,
		NumberOfOrders: "2",
	}, storefront.Order{ID: "gid://shopify/Order/1", OrderNumber: 1001, Name: "#1001"})

	deps := identity.Deps{
		Storefront: storefront.New(testShop, "2024-01", "sf-token", storefront.WithEndpoint(f.storefront.URL)),
		Admin:      admin.NewClient("2024-01", admin.WithBaseURL(f.admin.BaseURL)),
		Installer:  admin.NewInstaller("api-key", "api-secret", "read_customers", "https://dash.example.com/oauth/callback", admin.WithInstallBaseURL(f.admin.BaseURL)),
		Shops:      f.shops,
	}
	opts = append([]identity.Option{
		identity.WithMetrics(f.metrics),
		identity.WithNowTime(func() time.Time { return f.now }),
	}, opts...)
	r, err := identity.NewResolver(deps, opts...)
	require.NoError(t, err)
	f.resolver = r
	return f
}

func TestNewResolver_MissingDeps(t *testing.T) {
	_, err := identity.NewResolver(identity.Deps{})
	require.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestClassify(t *testing.T) {
	require.Equal(t, identity.AppProxy, identity.Classify(verify.Params{"signature": "abc", "shop": testShop}))
	require.Equal(t, identity.OAuthInstall, identity.Classify(verify.Params{"hmac": "abc", "code": "c", "shop": testShop}))
	require.Equal(t, identity.DirectLogin, identity.Classify(verify.Params{"hmac": "abc", "shop": testShop}))
	require.Equal(t, identity.DirectLogin, identity.Classify(verify.Params{}))
	require.Equal(t, "app_proxy", identity.AppProxy.String())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		sess := sessions.Default()
		require.NoError(t, f.resolver.Login(ctx, sess, testEmail, testPassword))
		require.True(t, sess.IsLoggedIn)
		require.NotEmpty(t, sess.AccessToken)
		require.True(t, sess.ExpiresAt.After(f.now))
	})

	t.Run("rejected", func(t *testing.T) {
		sess := sessions.Default()
		err := f.resolver.Login(ctx, sess, testEmail, "wrong")
		require.True(t, errors.Is(err, errors.ErrAuthentication))
		require.Equal(t, "Unidentified customer", errors.Message(err, ""))
		require.False(t, sess.IsLoggedIn)
	})

	t.Run("missing input", func(t *testing.T) {
		err := f.resolver.Login(ctx, sessions.Default(), "  ", testPassword)
		require.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("upstream failure", func(t *testing.T) {
		f.storefront.SetFailing(true)
		defer f.storefront.SetFailing(false)
		err := f.resolver.Login(ctx, sessions.Default(), testEmail, testPassword)
		require.True(t, errors.Is(err, errors.ErrUpstream))
	})

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues("rejected")))
}

func TestFromSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		res, err := f.resolver.FromSession(ctx, sessions.Default())
		require.NoError(t, err)
		require.False(t, res.IsLoggedIn)
		require.Nil(t, res.Customer)
		require.False(t, res.SessionCleared)
	})

	t.Run("logged in", func(t *testing.T) {
		sess := sessions.Default()
		require.NoError(t, f.resolver.Login(ctx, sess, testEmail, testPassword))
		res, err := f.resolver.FromSession(ctx, sess)
		require.NoError(t, err)
		require.True(t, res.IsLoggedIn)
		require.Equal(t, testCustGID, res.Customer.ID)
		require.Equal(t, "Jane", utils.Value(res.Customer.FirstName))
		require.Equal(t, "2", res.Customer.NumberOfOrders)
	})

	t.Run("expired", func(t *testing.T) {
		sess := sessions.Default()
		token := f.storefront.IssueToken(testEmail, f.now.Add(-time.Minute))
		sess.LogIn(token, f.now.Add(-time.Minute))
		before := f.storefront.Calls(fakestorefront.OpCustomer)

		res, err := f.resolver.FromSession(ctx, sess)
		require.NoError(t, err)
		require.False(t, res.IsLoggedIn)
		require.Equal(t, "Session expired", res.Message)
		require.True(t, res.SessionCleared)
		require.False(t, sess.IsLoggedIn)
		require.Empty(t, sess.AccessToken)
		require.Equal(t, before, f.storefront.Calls(fakestorefront.OpCustomer))
	})

	t.Run("expiry equal to now", func(t *testing.T) {
		sess := sessions.Default()
		sess.LogIn(f.storefront.IssueToken(testEmail, f.now), f.now)
		res, err := f.resolver.FromSession(ctx, sess)
		require.NoError(t, err)
		require.True(t, res.SessionCleared)
	})

	t.Run("revoked token", func(t *testing.T) {
		sess := sessions.Default()
		sess.LogIn("unknown-token", f.now.Add(time.Hour))
		res, err := f.resolver.FromSession(ctx, sess)
		require.NoError(t, err)
		require.False(t, res.IsLoggedIn)
		require.True(t, res.SessionCleared)
		require.False(t, sess.IsLoggedIn)
	})

	t.Run("upstream failure keeps session", func(t *testing.T) {
		sess := sessions.Default()
		require.NoError(t, f.resolver.Login(ctx, sess, testEmail, testPassword))
		f.storefront.SetFailing(true)
		defer f.storefront.SetFailing(false)
		_, err := f.resolver.FromSession(ctx, sess)
		require.True(t, errors.Is(err, errors.ErrUpstream))
		require.True(t, sess.IsLoggedIn)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessions.Default()
	require.NoError(t, f.resolver.Login(ctx, sess, testEmail, testPassword))
	token := sess.AccessToken

	f.resolver.Logout(ctx, sess)
	require.False(t, sess.IsLoggedIn)
	require.False(t, f.storefront.TokenValid(token))
	require.Equal(t, 1, f.storefront.Calls(fakestorefront.OpDelete))

	f.resolver.Logout(ctx, sess)
	require.False(t, sess.IsLoggedIn)
	require.Equal(t, 1, f.storefront.Calls(fakestorefront.OpDelete))
}

func TestLogout_UpstreamFailureStillClears(t *testing.T) {
	f := newFixture(t)
	sess := sessions.Default()
	sess.LogIn(f.storefront.IssueToken(testEmail, f.now.Add(time.Hour)), f.now.Add(time.Hour))
	f.storefront.SetFailing(true)

	f.resolver.Logout(context.Background(), sess)
	require.False(t, sess.IsLoggedIn)
	require.Empty(t, sess.AccessToken)
}

func TestRenew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessions.Default()
	require.NoError(t, f.resolver.Login(ctx, sess, testEmail, testPassword))
	first := *sess.ExpiresAt

	f.now = f.now.Add(time.Hour)
	require.NoError(t, f.resolver.Renew(ctx, sess))
	require.True(t, sess.ExpiresAt.After(first))

	require.True(t, errors.Is(f.resolver.Renew(ctx, sessions.Default()), errors.ErrAuthentication))

	f.now = f.now.Add(48 * time.Hour)
	err := f.resolver.Renew(ctx, sess)
	require.True(t, errors.Is(err, errors.ErrExpired))
	require.False(t, sess.IsLoggedIn)
}

func TestOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := sessions.Default()
	require.NoError(t, f.resolver.Login(ctx, sess, testEmail, testPassword))

	orders, err := f.resolver.Orders(ctx, sess, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "#1001", orders[0].Name)

	_, err = f.resolver.Orders(ctx, sessions.Default(), 5)
	require.True(t, errors.Is(err, errors.ErrAuthentication))
}

func TestFromProxy(t *testing.T) {
	ctx := context.Background()

	t.Run("not logged in on storefront", func(t *testing.T) {
		f := newFixture(t)
		res := f.resolver.FromProxy(ctx, verify.Params{"shop": testShop})
		require.False(t, res.IsLoggedIn)
		require.Equal(t, "Customer not logged in on storefront", res.Message)
	})

	t.Run("limited without admin token", func(t *testing.T) {
		f := newFixture(t)
		res := f.resolver.FromProxy(ctx, verify.Params{"shop": testShop, "logged_in_customer_id": "123"})
		require.True(t, res.IsLoggedIn)
		require.True(t, res.Limited)
		require.Equal(t, &identity.Customer{ID: "123"}, res.Customer)
		require.Equal(t, "Admin API token not configured - limited data available", res.Message)
		require.Equal(t, 0, f.admin.Lookups())
	})

	t.Run("full with configured token", func(t *testing.T) {
		f := newFixture(t, identity.WithAdminAccessToken(testShop, "configured-token"))
		f.admin.AddToken("configured-token")
		f.admin.AddCustomer(admin.Customer{ID: testCustGID, Email: testEmail, DisplayName: "Jane Doe", OrdersCount: "4"})

		res := f.resolver.FromProxy(ctx, verify.Params{"shop": testShop, "logged_in_customer_id": "123"})
		require.True(t, res.IsLoggedIn)
		require.False(t, res.Limited)
		require.Equal(t, testEmail, res.Customer.Email)
		require.Equal(t, "4", res.Customer.NumberOfOrders)
	})

	t.Run("configured token stays with its own store", func(t *testing.T) {
		f := newFixture(t, identity.WithAdminAccessToken(testShop, "configured-token"))
		f.admin.AddToken("configured-token")
		f.admin.AddCustomer(admin.Customer{ID: testCustGID, Email: testEmail})

		res := f.resolver.FromProxy(ctx, verify.Params{"shop": "other-shop.myshopify.com", "logged_in_customer_id": "123"})
		require.True(t, res.IsLoggedIn)
		require.True(t, res.Limited)
		require.Equal(t, "Admin API token not configured - limited data available", res.Message)
		require.Equal(t, 0, f.admin.Lookups())

		res = f.resolver.FromProxy(ctx, verify.Params{"shop": "Test-Shop.myshopify.com", "logged_in_customer_id": "123"})
		require.False(t, res.Limited)
		require.Equal(t, 1, f.admin.Lookups())
	})

	t.Run("stored install token wins", func(t *testing.T) {
		f := newFixture(t, identity.WithAdminAccessToken(testShop, "stale-token"))
		f.admin.AddToken("installed-token")
		f.admin.AddCustomer(admin.Customer{ID: testCustGID, Email: testEmail, FirstName: utils.Ptr("Jane")})
		require.NoError(t, f.shops.Upsert(ctx, shops.Token{Shop: testShop, AccessToken: "installed-token"}))

		res := f.resolver.FromProxy(ctx, verify.Params{"shop": testShop, "logged_in_customer_id": "123"})
		require.False(t, res.Limited)
		require.Equal(t, testEmail, res.Customer.Email)
		require.Equal(t, "Jane", res.Customer.DisplayName)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newFixture(t, identity.WithAdminAccessToken(testShop, "rejected-token"))
		res := f.resolver.FromProxy(ctx, verify.Params{"shop": testShop, "logged_in_customer_id": "123"})
		require.True(t, res.IsLoggedIn)
		require.True(t, res.Limited)
		require.Equal(t, "123", res.Customer.ID)
		require.Equal(t, "Could not fetch customer details", res.Message)
		require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ProxyResolutions.WithLabelValues("lookup_failed")))
	})
}

func TestInstall(t *testing.T) {
	ctx := context.Background()
	host := "admin.shopify.com/store/test-shop"
	state := base64.StdEncoding.EncodeToString([]byte(host))

	t.Run("stores token and redirects to host", func(t *testing.T) {
		f := newFixture(t)
		f.admin.AddCode("good-code", "shpat_installed")

		redirect, err := f.resolver.Install(ctx, testShop, "good-code", state)
		require.NoError(t, err)
		require.Equal(t, "https://"+host, redirect)

		stored, err := f.shops.Get(ctx, testShop)
		require.NoError(t, err)
		require.Equal(t, "shpat_installed", stored.AccessToken)
		require.Equal(t, "read_customers", stored.Scope)
	})

	t.Run("failed exchange stores nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.resolver.Install(ctx, testShop, "unknown-code", state)
		require.True(t, errors.Is(err, errors.ErrUpstream))
		require.Equal(t, "Failed to get access token", errors.Message(err, ""))
		_, err = f.shops.Get(ctx, testShop)
		require.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("missing parameters", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.resolver.Install(ctx, testShop, "", state)
		require.True(t, errors.Is(err, errors.ErrValidation))
		require.Equal(t, 0, f.admin.Exchanges())
	})
}

func TestRedirectHost(t *testing.T) {
	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	require.Equal(t, "admin.shopify.com/store/test-shop", identity.RedirectHost(testShop, enc("admin.shopify.com/store/test-shop")))
	require.Equal(t, "test-shop.myshopify.com/admin", identity.RedirectHost(testShop, enc("test-shop.myshopify.com/admin")))
	require.Equal(t, "admin.shopify.com/store/test-shop", identity.RedirectHost(testShop, base64.RawURLEncoding.EncodeToString([]byte("admin.shopify.com/store/test-shop"))))

	// Fallbacks.
	require.Equal(t, "admin.shopify.com/store/test-shop", identity.RedirectHost(testShop, ""))
	require.Equal(t, "admin.shopify.com/store/test-shop", identity.RedirectHost(testShop, "%%%not-base64"))
	require.Equal(t, "admin.shopify.com/store/test-shop", identity.RedirectHost(testShop, enc("evil.example.com/phish")))
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.resolver.Resolve(ctx, verify.Params{"signature": "x", "shop": testShop}, sessions.Default())
	require.NoError(t, err)
	require.Equal(t, "Customer not logged in on storefront", res.Message)

	_, err = f.resolver.Resolve(ctx, verify.Params{"hmac": "x", "code": "c"}, sessions.Default())
	require.True(t, errors.Is(err, errors.ErrValidation))

	res, err = f.resolver.Resolve(ctx, verify.Params{}, sessions.Default())
	require.NoError(t, err)
	require.False(t, res.IsLoggedIn)
}

// undatedStorefront issues tokens without an expiry.
type undatedStorefront struct {
	identity.Storefront
}

func (undatedStorefront) CreateAccessToken(context.Context, string, string) (*storefront.AccessToken, []storefront.UserError, error) {
	return &storefront.AccessToken{AccessToken: "token-without-expiry"}, nil, nil
}

func (undatedStorefront) RenewAccessToken(context.Context, string) (*storefront.AccessToken, error) {
	return &storefront.AccessToken{AccessToken: "token-without-expiry"}, nil
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r, err := identity.NewResolver(identity.Deps{
		Storefront: undatedStorefront{},
		Admin:      admin.NewClient("2024-01"),
		Installer:  admin.NewInstaller("api-key", "api-secret", "read_customers", "https://dash.example.com/oauth/callback"),
		Shops:      shops.NewInMemoryRepo(),
	}, identity.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	t.Run("login", func(t *testing.T) {
		sess := sessions.Default()
		err := r.Login(ctx, sess, testEmail, testPassword)
		require.True(t, errors.Is(err, errors.ErrUpstream))
		require.False(t, sess.IsLoggedIn)
		require.Empty(t, sess.AccessToken)
	})

	t.Run("renew", func(t *testing.T) {
		sess := sessions.Default()
		sess.LogIn("existing-token", now.Add(time.Hour))
		err := r.Renew(ctx, sess)
		require.True(t, errors.Is(err, errors.ErrUpstream))
		require.True(t, sess.IsLoggedIn)
		require.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))
	})
}
