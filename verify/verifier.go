package verify

import (
	"github.com/jrsteele09/storefront-dashboard/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Result is the outcome of a signature check.
type Result int

const (
	Malformed Result = iota
	Mismatch
	Verified
	// Bypassed means no shared secret is configured. It is accepted, but it is not Verified.
	Bypassed
)

func (r Result) OK() bool {
	return r == Verified || r == Bypassed
}

func (r Result) String() string {
	switch r {
	case Verified:
		return "verified"
	case Bypassed:
		return "bypassed"
	case Mismatch:
		return "mismatch"
	default:
		return "malformed"
	}
}

const (
	schemeOAuth = "oauth"
	schemeProxy = "proxy"
)

// Verifier checks platform signatures with the app's shared secret.
type Verifier struct {
	secret  string
	metrics *metrics.Metrics
}

type Option func(*Verifier)

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

func New(secret string, opts ...Option) *Verifier {
	v := &Verifier{secret: secret}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// OAuth verifies the "hmac" parameter of an install or OAuth callback request.
func (v *Verifier) OAuth(params Params) Result {
	return v.check(schemeOAuth, OAuthMessage(params), params[OAuthSignatureKey], params)
}

// Proxy verifies the "signature" parameter of an app proxy request.
func (v *Verifier) Proxy(params Params) Result {
	return v.check(schemeProxy, ProxyMessage(params), params[ProxySignatureKey], params)
}

func (v *Verifier) check(scheme, message, claimed string, params Params) Result {
	if v.secret == "" {
		log.Warn().Str("scheme", scheme).Msg("API secret not set - skipping signature verification")
		v.metrics.Signature(scheme, Bypassed.String())
		return Bypassed
	}
	result := compare(message, claimed, v.secret)
	if result != Verified {
		log.Warn().
			Str("scheme", scheme).
			Str("result", result.String()).
			Str("shop", params["shop"]).
			Msg("Signature verification failed")
	}
	v.metrics.Signature(scheme, result.String())
	return result
}
