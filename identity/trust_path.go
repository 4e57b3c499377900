package identity

import "github.com/jrsteele09/storefront-dashboard/verify"

// TrustPath is the way an inbound request asserts who it is.
type TrustPath int

const (
	// DirectLogin covers requests authenticated by the customer session cookie.
	DirectLogin TrustPath = iota
	// OAuthInstall is the merchant install callback, signed with "hmac".
	OAuthInstall
	// AppProxy is a storefront request forwarded by the platform, signed with "signature".
	AppProxy
)

func (p TrustPath) String() string {
	switch p {
	case OAuthInstall:
		return "oauth_install"
	case AppProxy:
		return "app_proxy"
	default:
		return "direct_login"
	}
}

// Classify picks the trust path from which parameters are present. It does not verify anything.
func Classify(params verify.Params) TrustPath {
	switch {
	case params.Has(verify.ProxySignatureKey):
		return AppProxy
	case params.Has(verify.OAuthSignatureKey) && params.Has("code"):
		return OAuthInstall
	default:
		return DirectLogin
	}
}
