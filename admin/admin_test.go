package admin_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/jrsteele09/storefront-dashboard/admin"
	"github.com/jrsteele09/storefront-dashboard/admin/fakeadmin"
	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/utils"
	"github.com/stretchr/testify/require"
)

const (
	testShop        = "test-shop.myshopify.com"
	testAPIKey      = "api-key"
	testAPISecret   = "api-secret"
	testRedirectURI = "https://dash.example.com/oauth/callback"
)

func TestValidShopDomain(t *testing.T) {
	for shop, want := range map[string]bool{
		"test-shop.myshopify.com":         true,
		"Shop1.myshopify.com":             true,
		"-bad.myshopify.com":              false,
		"evil.com":                        false,
		"test-shop.myshopify.com.evil.io": false,
		"a/b.myshopify.com":               false,
		"":                                false,
	} {
		require.Equal(t, want, admin.ValidShopDomain(shop), shop)
	}
	require.Equal(t, "test-shop", admin.ShopHandle(testShop))
}

func TestCustomerGID(t *testing.T) {
	require.Equal(t, "gid://shopify/Customer/123", admin.CustomerGID("123"))
	require.Equal(t, "gid://shopify/Customer/123", admin.CustomerGID("gid://shopify/Customer/123"))
}

func TestInstaller_AuthorizeURL(t *testing.T) {
	i := admin.NewInstaller(testAPIKey, testAPISecret, "read_customers,read_orders", testRedirectURI)

	raw, err := i.AuthorizeURL(testShop, "aG9zdA")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "https", u.Scheme)
	require.Equal(t, testShop, u.Host)
	require.Equal(t, "/admin/oauth/authorize", u.Path)
	q := u.Query()
	require.Equal(t, testAPIKey, q.Get("client_id"))
	require.Equal(t, "read_customers,read_orders", q.Get("scope"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "aG9zdA", q.Get("state"))

	_, err = i.AuthorizeURL("evil.com", "")
	require.True(t, errors.Is(err, errors.ErrValidation))

	_, err = admin.NewInstaller("", "", "read_customers", testRedirectURI).AuthorizeURL(testShop, "")
	require.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestInstaller_Exchange(t *testing.T) {
	fake := fakeadmin.New()
	defer fake.Close()
	fake.AddCode("good-code", "shpat_123")

	i := admin.NewInstaller(testAPIKey, testAPISecret, "read_customers", testRedirectURI,
		admin.WithInstallBaseURL(fake.BaseURL), admin.WithInstallHTTPClient(fake.Client()))

	t.Run("success", func(t *testing.T) {
		tok, err := i.Exchange(context.Background(), testShop, "good-code")
		require.NoError(t, err)
		require.Equal(t, "shpat_123", tok.AccessToken)
		require.Equal(t, "read_customers", tok.Scope)
		require.Equal(t, testShop, tok.Shop)
		form := fake.LastExchangeForm()
		require.Equal(t, testAPIKey, form["client_id"])
		require.Equal(t, testAPISecret, form["client_secret"])
		require.Equal(t, "good-code", form["code"])
	})

	t.Run("rejected code", func(t *testing.T) {
		_, err := i.Exchange(context.Background(), testShop, "good-code")
		require.True(t, errors.Is(err, errors.ErrUpstream))
		require.Equal(t, "Failed to get access token", errors.Message(err, ""))
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := admin.NewInstaller(testAPIKey, "", "read_customers", testRedirectURI).Exchange(context.Background(), testShop, "x")
		require.True(t, errors.Is(err, errors.ErrConfiguration))
	})
}

func TestClient_CustomerByID(t *testing.T) {
	fake := fakeadmin.New()
	defer fake.Close()
	fake.AddToken("shpat_123")
	fake.AddCustomer(admin.Customer{
		ID:          "gid://shopify/Customer/123",
		Email:       "john.doe@example.com",
		FirstName:   utils.Ptr("John"),
		DisplayName: "John Doe",
		OrdersCount: "4",
	})

	c := admin.NewClient("2024-01", admin.WithBaseURL(fake.BaseURL), admin.WithHTTPClient(fake.Client()))
	ctx := context.Background()

	customer, err := c.CustomerByID(ctx, testShop, "shpat_123", "123")
	require.NoError(t, err)
	require.Equal(t, "john.doe@example.com", customer.Email)
	require.Equal(t, "4", customer.OrdersCount)

	_, err = c.CustomerByID(ctx, testShop, "shpat_123", "999")
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = c.CustomerByID(ctx, testShop, "wrong-token", "123")
	require.True(t, errors.Is(err, errors.ErrUpstream))

	_, err = c.CustomerByID(ctx, "evil.com", "shpat_123", "123")
	require.True(t, errors.Is(err, errors.ErrValidation))
}
