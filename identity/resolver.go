package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/storefront-dashboard/admin"
	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"github.com/jrsteele09/storefront-dashboard/shops"
	"github.com/jrsteele09/storefront-dashboard/storefront"
)

// Storefront is the customer facing API used for the session bound path.
type Storefront interface {
	CreateAccessToken(ctx context.Context, email, password string) (*storefront.AccessToken, []storefront.UserError, error)
	DeleteAccessToken(ctx context.Context, accessToken string) error
	RenewAccessToken(ctx context.Context, accessToken string) (*storefront.AccessToken, error)
	Customer(ctx context.Context, accessToken string) (*storefront.Customer, error)
	Orders(ctx context.Context, accessToken string, first int) ([]storefront.Order, error)
}

// AdminLookup resolves a customer by id with a privileged token.
type AdminLookup interface {
	CustomerByID(ctx context.Context, shop, accessToken, customerID string) (*admin.Customer, error)
}

// Installer exchanges an install authorization code for an admin token.
type Installer interface {
	Exchange(ctx context.Context, shop, code string) (*admin.InstallToken, error)
}

// Deps holds the external collaborators of the Resolver.
type Deps struct {
	Storefront Storefront
	Admin      AdminLookup
	Installer  Installer
	Shops      shops.Repo
}

// Resolver turns verified requests and sessions into customer identities.
type Resolver struct {
	deps       Deps
	adminToken string
	adminShop  string
	metrics    *metrics.Metrics
	nowTime    func() time.Time
}

type Option func(*Resolver)

// WithAdminAccessToken sets the operator configured fallback for privileged lookups. The
// token belongs to one store and is only used for requests from shop.
func WithAdminAccessToken(shop, token string) Option {
	return func(r *Resolver) {
		r.adminShop = shop
		r.adminToken = token
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *Resolver) {
		r.nowTime = nowFunc
	}
}

func NewResolver(deps Deps, opts ...Option) (*Resolver, error) {
	if deps.Storefront == nil || deps.Admin == nil || deps.Installer == nil || deps.Shops == nil {
		return nil, errors.New(errors.ErrConfiguration, "resolver requires storefront, admin, installer and shop store")
	}
	r := &Resolver{deps: deps, nowTime: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// fingerprint identifies a secret in logs without revealing it.
func fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:6])
}
