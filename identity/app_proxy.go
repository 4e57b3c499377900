package identity

import (
	"context"
	"strings"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/jrsteele09/storefront-dashboard/verify"
	"github.com/rs/zerolog/log"
)

const (
	proxyCustomerIDKey = "logged_in_customer_id"

	msgNotLoggedInOnStorefront = "Customer not logged in on storefront"
	msgLimitedData             = "Admin API token not configured - limited data available"
	msgLookupFailed            = "Could not fetch customer details"
)

// FromProxy resolves the customer named by a verified app proxy request. The caller must have
// checked the signature; the customer id itself is not signed separately.
func (r *Resolver) FromProxy(ctx context.Context, params verify.Params) Result {
	customerID := params[proxyCustomerIDKey]
	if customerID == "" {
		r.metrics.Proxy("anonymous")
		return loggedOut(msgNotLoggedInOnStorefront)
	}

	shop := params["shop"]
	token := r.privilegedToken(ctx, shop)
	if token == "" {
		r.metrics.Proxy("limited")
		return Result{IsLoggedIn: true, Customer: &Customer{ID: customerID}, Message: msgLimitedData, Limited: true}
	}

	customer, err := r.deps.Admin.CustomerByID(ctx, shop, token, customerID)
	if err != nil {
		log.Error().Err(err).Str("shop", shop).Str("customer_id", customerID).Msg("Failed to fetch customer")
		r.metrics.Proxy("lookup_failed")
		return Result{IsLoggedIn: true, Customer: &Customer{ID: customerID}, Message: msgLookupFailed, Limited: true}
	}

	r.metrics.Proxy("admin")
	return Result{IsLoggedIn: true, Customer: fromAdmin(customer)}
}

// privilegedToken prefers the token stored at install time. The configured token is only
// returned for the store it was issued for.
func (r *Resolver) privilegedToken(ctx context.Context, shop string) string {
	if shop == "" {
		return ""
	}
	stored, err := r.deps.Shops.Get(ctx, shop)
	switch {
	case err == nil:
		return stored.AccessToken
	case !errors.Is(err, errors.ErrNotFound):
		log.Error().Err(err).Str("shop", shop).Msg("Failed to read stored admin token")
	}
	if r.adminShop != "" && strings.EqualFold(shop, r.adminShop) {
		return r.adminToken
	}
	return ""
}

// Resolve dispatches on the request's trust path. params must already be verified for
// AppProxy; install callbacks carry no customer identity.
func (r *Resolver) Resolve(ctx context.Context, params verify.Params, sess *sessions.Session) (Result, error) {
	switch Classify(params) {
	case AppProxy:
		return r.FromProxy(ctx, params), nil
	case OAuthInstall:
		return Result{}, errors.New(errors.ErrValidation, "Install callbacks do not identify a customer")
	default:
		return r.FromSession(ctx, sess)
	}
}
