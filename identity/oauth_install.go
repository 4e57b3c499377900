package identity

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/jrsteele09/storefront-dashboard/admin"
	"github.com/jrsteele09/storefront-dashboard/internal/errors"
	"github.com/jrsteele09/storefront-dashboard/shops"
	"github.com/rs/zerolog/log"
)

const adminHost = "admin.shopify.com"

// Install exchanges the install code for the shop's admin token, stores it keyed by shop
// and returns the embedded admin URL to send the merchant back to.
func (r *Resolver) Install(ctx context.Context, shop, code, state string) (string, error) {
	if shop == "" || code == "" {
		r.metrics.Install("invalid")
		return "", errors.New(errors.ErrValidation, "Missing required parameters")
	}

	token, err := r.deps.Installer.Exchange(ctx, shop, code)
	if err != nil {
		r.metrics.Install("exchange_failed")
		return "", errors.Wrapf(err, "[identity Install] %s", shop)
	}

	stored := shops.Token{
		Shop:        token.Shop,
		AccessToken: token.AccessToken,
		Scope:       token.Scope,
		InstalledAt: token.ObtainedAt,
	}
	if err := r.deps.Shops.Upsert(ctx, stored); err != nil {
		r.metrics.Install("store_failed")
		return "", errors.Wrapf(err, "[identity Install] store token for %s", shop)
	}

	log.Info().
		Str("shop", shop).
		Str("scope", token.Scope).
		Str("token_fingerprint", fingerprint(token.AccessToken)).
		Msg("Admin access token stored")
	r.metrics.Install("success")

	return "https://" + RedirectHost(shop, state), nil
}

// RedirectHost decodes the base64 "host" state back to the embedded admin host. Without a
// usable state it falls back to admin.shopify.com/store/<handle>.
func RedirectHost(shop, state string) string {
	if host, ok := decodeHost(state); ok {
		return host
	}
	return adminHost + "/store/" + admin.ShopHandle(shop)
}

func decodeHost(state string) (string, bool) {
	if state == "" {
		return "", false
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		decoded, err := enc.DecodeString(state)
		if err != nil {
			continue
		}
		host := string(decoded)
		if trustedAdminHost(host) {
			return host, true
		}
		log.Warn().Str("host", host).Msg("Ignoring untrusted host in install state")
		return "", false
	}
	return "", false
}

// trustedAdminHost accepts the two shapes the platform uses for the embedded admin:
// "admin.shopify.com/store/<handle>" and "<handle>.myshopify.com/admin".
func trustedAdminHost(host string) bool {
	hostname, _, _ := strings.Cut(host, "/")
	return hostname == adminHost || admin.ValidShopDomain(hostname)
}
