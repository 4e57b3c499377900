package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"golang.org/x/oauth2"
)

// InstallToken is the long lived admin token obtained when a merchant installs the app.
type InstallToken struct {
	Shop        string
	AccessToken string
	Scope       string
	ObtainedAt  time.Time
}

// Installer drives the merchant OAuth install: authorize redirect and code exchange.
type Installer struct {
	apiKey      string
	apiSecret   string
	scopes      string
	redirectURI string
	baseURL     func(shop string) string
	httpClient  *http.Client
	metrics     *metrics.Metrics
	nowTime     func() time.Time
}

type InstallerOption func(*Installer)

// WithInstallBaseURL overrides how a shop's base URL is derived (primarily for testing).
func WithInstallBaseURL(f func(shop string) string) InstallerOption {
	return func(i *Installer) {
		i.baseURL = f
	}
}

func WithInstallHTTPClient(h *http.Client) InstallerOption {
	return func(i *Installer) {
		i.httpClient = h
	}
}

func WithInstallMetrics(m *metrics.Metrics) InstallerOption {
	return func(i *Installer) {
		i.metrics = m
	}
}

// NewInstaller takes the comma separated scopes exactly as the platform expects them.
func NewInstaller(apiKey, apiSecret, scopes, redirectURI string, opts ...InstallerOption) *Installer {
	i := &Installer{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		scopes:      scopes,
		redirectURI: redirectURI,
		baseURL:     ShopURL,
		nowTime:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Installer) oauthConfig(shop string) *oauth2.Config {
	base := i.baseURL(shop)
	return &oauth2.Config{
		ClientID:     i.apiKey,
		ClientSecret: i.apiSecret,
		RedirectURL:  i.redirectURI,
		Scopes:       []string{i.scopes},
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/admin/oauth/authorize",
			TokenURL:  base + "/admin/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthorizeURL builds the platform consent URL. state carries the embedded admin host.
func (i *Installer) AuthorizeURL(shop, state string) (string, error) {
	if i.apiKey == "" {
		return "", errors.New(errors.ErrConfiguration, "SHOPIFY_API_KEY is not set")
	}
	if !ValidShopDomain(shop) {
		return "", errors.Newf(errors.ErrValidation, "invalid shop domain %q", shop)
	}
	return i.oauthConfig(shop).AuthCodeURL(state), nil
}

// Exchange trades an authorization code for the shop's admin access token.
func (i *Installer) Exchange(ctx context.Context, shop, code string) (*InstallToken, error) {
	if i.apiKey == "" || i.apiSecret == "" {
		return nil, errors.New(errors.ErrConfiguration, "App not configured")
	}
	if !ValidShopDomain(shop) {
		return nil, errors.Newf(errors.ErrValidation, "invalid shop domain %q", shop)
	}
	if i.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, i.httpClient)
	}

	done := i.metrics.ObserveUpstream("oauthExchange")
	token, err := i.oauthConfig(shop).Exchange(ctx, code)
	done()
	if err != nil {
		return nil, errors.WithCause(errors.ErrUpstream, "Failed to get access token", fmt.Errorf("[admin Exchange] %s: %w", shop, err))
	}

	scope, _ := token.Extra("scope").(string)
	return &InstallToken{
		Shop:        shop,
		AccessToken: token.AccessToken,
		Scope:       scope,
		ObtainedAt:  i.nowTime().UTC(),
	}, nil
}
