package server

import (
	"net/http"

	"github.com/jrsteele09/storefront-dashboard/identity"
	"github.com/jrsteele09/storefront-dashboard/verify"
	"github.com/rs/zerolog"
)

// InstallHandler starts the merchant install by redirecting to the platform consent screen.
// The embedded admin "host" is carried through as the OAuth state.
func (s *Server) InstallHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		shop := q.Get("shop")
		if !s.validShop(shop) {
			writeJSONError(w, fieldMessages["shop"], http.StatusBadRequest)
			return
		}

		authorizeURL, err := s.authorizer.AuthorizeURL(shop, q.Get("host"))
		if err != nil {
			s.writeError(w, r, err, msgNotConfigured)
			return
		}
		s.metrics.Install("redirect")
		http.Redirect(w, r, authorizeURL, http.StatusSeeOther)
	}
}

// OAuthCallbackHandler completes the install. The signature is checked before any outbound call.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code, shop, hmac := q.Get("code"), q.Get("shop"), q.Get(verify.OAuthSignatureKey)
		if code == "" || shop == "" || hmac == "" {
			writeJSONError(w, "Missing required parameters", http.StatusBadRequest)
			return
		}
		if !s.validShop(shop) {
			writeJSONError(w, fieldMessages["shop"], http.StatusBadRequest)
			return
		}

		params := verify.ParamsFromQuery(q)
		if path := identity.Classify(params); path != identity.OAuthInstall {
			zerolog.Ctx(r.Context()).Warn().Str("trust_path", path.String()).Msg("Callback is not an install request")
			s.metrics.Install("invalid_hmac")
			writeJSONError(w, "Invalid HMAC", http.StatusUnauthorized)
			return
		}
		if result := s.verifier.OAuth(params); !result.OK() {
			s.metrics.Install("invalid_hmac")
			writeJSONError(w, "Invalid HMAC", http.StatusUnauthorized)
			return
		}

		redirectURL, err := s.resolver.Install(r.Context(), shop, code, q.Get("state"))
		if err != nil {
			s.writeError(w, r, err, "Failed to get access token")
			return
		}
		zerolog.Ctx(r.Context()).Info().Str("shop", shop).Msg("App installed")
		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}
