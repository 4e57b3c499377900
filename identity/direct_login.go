package identity

import (
	"context"
	"strings"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

const defaultOrdersPage = 10

// Login exchanges customer credentials and populates sess. The caller persists sess.
// The first user error from the platform is returned verbatim as an authentication error.
func (r *Resolver) Login(ctx context.Context, sess *sessions.Session, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		r.metrics.Login("invalid")
		return errors.New(errors.ErrValidation, "Email and password are required")
	}

	token, userErrors, err := r.deps.Storefront.CreateAccessToken(ctx, email, password)
	if err != nil {
		r.metrics.Login("upstream_error")
		return errors.Wrapf(err, "[identity Login]")
	}
	if len(userErrors) > 0 {
		r.metrics.Login("rejected")
		return errors.New(errors.ErrAuthentication, userErrors[0].Message)
	}
	if token == nil || token.AccessToken == "" {
		r.metrics.Login("rejected")
		return errors.New(errors.ErrAuthentication, "Authentication failed")
	}
	if token.ExpiresAt.IsZero() {
		r.metrics.Login("upstream_error")
		return errors.New(errors.ErrUpstream, "customer access token has no expiry")
	}

	sess.LogIn(token.AccessToken, token.ExpiresAt)
	r.metrics.Login("success")
	return nil
}

// Logout revokes the token upstream on a best effort basis and clears sess.
// Calling it on an already cleared session is a no-op apart from the clear.
func (r *Resolver) Logout(ctx context.Context, sess *sessions.Session) {
	if sess.AccessToken != "" {
		if err := r.deps.Storefront.DeleteAccessToken(ctx, sess.AccessToken); err != nil {
			log.Warn().Err(err).Msg("Logout: failed to revoke customer access token")
		}
	}
	sess.Clear()
}

// FromSession resolves the identity held by sess. An expired token clears the session and
// reports a logged out state; it is never renewed here.
func (r *Resolver) FromSession(ctx context.Context, sess *sessions.Session) (Result, error) {
	if !sess.HasToken() {
		r.metrics.Session("anonymous")
		return loggedOut(""), nil
	}
	if sessions.IsExpired(sess, r.nowTime()) {
		sess.Clear()
		r.metrics.Session("expired")
		res := loggedOut("Session expired")
		res.SessionCleared = true
		return res, nil
	}

	customer, err := r.deps.Storefront.Customer(ctx, sess.AccessToken)
	switch {
	case errors.Is(err, errors.ErrAuthentication):
		sess.Clear()
		r.metrics.Session("revoked")
		res := loggedOut("")
		res.SessionCleared = true
		return res, nil
	case err != nil:
		r.metrics.Session("upstream_error")
		return Result{}, errors.Wrapf(err, "[identity FromSession]")
	}

	r.metrics.Session("logged_in")
	return Result{IsLoggedIn: true, Customer: fromStorefront(customer)}, nil
}

// Renew extends the session's token once. It is only ever called explicitly.
func (r *Resolver) Renew(ctx context.Context, sess *sessions.Session) error {
	if err := r.requireFresh(sess); err != nil {
		return err
	}
	token, err := r.deps.Storefront.RenewAccessToken(ctx, sess.AccessToken)
	if errors.Is(err, errors.ErrAuthentication) {
		sess.Clear()
		return err
	}
	if err != nil {
		return errors.Wrapf(err, "[identity Renew]")
	}
	if token.ExpiresAt.IsZero() {
		return errors.New(errors.ErrUpstream, "renewed access token has no expiry")
	}
	sess.LogIn(token.AccessToken, token.ExpiresAt)
	return nil
}

// Orders lists the customer's recent orders for a fresh session.
func (r *Resolver) Orders(ctx context.Context, sess *sessions.Session, first int) ([]Order, error) {
	if err := r.requireFresh(sess); err != nil {
		return nil, err
	}
	if first <= 0 || first > 50 {
		first = defaultOrdersPage
	}
	orders, err := r.deps.Storefront.Orders(ctx, sess.AccessToken, first)
	if err != nil {
		return nil, errors.Wrapf(err, "[identity Orders]")
	}
	return orders, nil
}

// requireFresh rejects anonymous sessions and clears expired ones.
func (r *Resolver) requireFresh(sess *sessions.Session) error {
	if !sess.HasToken() {
		return errors.New(errors.ErrAuthentication, "Not logged in")
	}
	if sessions.IsExpired(sess, r.nowTime()) {
		sess.Clear()
		return errors.New(errors.ErrExpired, "Session expired")
	}
	return nil
}
