package config

import (
	"strings"
)

const defaultAPIVersion = "2024-01"

type ShopifyConfig interface {
	GetAPIKey() string
	GetAPISecret() string
	GetScopes() string
	GetAdminAccessToken() string
	GetStoreDomain() string
	GetStorefrontAccessToken() string
	GetAPIVersion() string
	GetOAuthRedirectURI() string
}

type Shopify struct {
	apiKey                string
	apiSecret             string
	scopes                string
	adminAccessToken      string
	storeDomain           string
	storefrontAccessToken string
	apiVersion            string
	redirectURI           string
}

var _ ShopifyConfig = Shopify{}

func loadShopify(lookup LookupFunc) Shopify {
	baseURL := strings.TrimRight(valueOr(lookup, baseURLVar, "http://localhost:8080"), "/")
	return Shopify{
		apiKey:                lookup("SHOPIFY_API_KEY"),
		apiSecret:             lookup("SHOPIFY_API_SECRET"),
		scopes:                valueOr(lookup, "SHOPIFY_SCOPES", "read_customers"),
		adminAccessToken:      lookup("SHOPIFY_ADMIN_ACCESS_TOKEN"),
		storeDomain:           lookup("SHOPIFY_STORE_DOMAIN"),
		storefrontAccessToken: lookup("SHOPIFY_STOREFRONT_ACCESS_TOKEN"),
		apiVersion:            valueOr(lookup, "SHOPIFY_API_VERSION", defaultAPIVersion),
		redirectURI:           baseURL + "/oauth/callback",
	}
}

func (s Shopify) GetAPIKey() string {
	return s.apiKey
}

// GetAPISecret is the shared secret for OAuth HMACs and app proxy signatures.
// An empty secret puts signature verification into development bypass.
func (s Shopify) GetAPISecret() string {
	return s.apiSecret
}

// GetScopes returns the comma separated scopes requested on install.
func (s Shopify) GetScopes() string {
	return s.scopes
}

// GetAdminAccessToken is the operator configured fallback token for privileged customer lookups.
func (s Shopify) GetAdminAccessToken() string {
	return s.adminAccessToken
}

func (s Shopify) GetStoreDomain() string {
	return s.storeDomain
}

func (s Shopify) GetStorefrontAccessToken() string {
	return s.storefrontAccessToken
}

func (s Shopify) GetAPIVersion() string {
	return s.apiVersion
}

func (s Shopify) GetOAuthRedirectURI() string {
	return s.redirectURI
}
