package server

import (
	"net/http"

	"github.com/jrsteele09/storefront-dashboard/identity"
	"github.com/jrsteele09/storefront-dashboard/verify"
	"github.com/rs/zerolog"
)

type proxyCustomerResponse struct {
	IsLoggedIn bool               `json:"isLoggedIn"`
	Customer   *identity.Customer `json:"customer"`
	Message    string             `json:"message,omitempty"`
}

// ProxyCustomerHandler answers storefront requests forwarded through the app proxy.
// Requests that are not proxy signed are always rejected. Outside production a signature
// that fails to verify is logged and tolerated so local tunnels work.
func (s *Server) ProxyCustomerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		params := verify.ParamsFromQuery(r.URL.Query())

		if path := identity.Classify(params); path != identity.AppProxy {
			logger.Warn().Str("trust_path", path.String()).Msg("Proxy route called without a proxy signature")
			writeJSONError(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		if result := s.verifier.Proxy(params); !result.OK() {
			if s.production {
				writeJSONError(w, "Invalid signature", http.StatusUnauthorized)
				return
			}
			logger.Warn().
				Str("result", result.String()).
				Msg("Proxy signature check failed - continuing outside production")
		}

		res, err := s.resolver.Resolve(r.Context(), params, s.sessions.Load(r))
		if err != nil {
			s.writeError(w, r, err, msgUnexpected)
			return
		}
		if res.Limited {
			logger.Info().Str("shop", params["shop"]).Str("reason", res.Message).Msg("Proxy customer resolved with limited data")
		}
		writeJSON(w, http.StatusOK, proxyCustomerResponse{
			IsLoggedIn: res.IsLoggedIn,
			Customer:   res.Customer,
			Message:    res.Message,
		})
	}
}
