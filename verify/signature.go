package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// OAuthMessage is the canonical string signed by the OAuth scheme.
func OAuthMessage(p Params) string {
	return canonicalize(p, OAuthSignatureKey, "&")
}

// ProxyMessage is the canonical string signed by the app proxy scheme.
func ProxyMessage(p Params) string {
	return canonicalize(p, ProxySignatureKey, "")
}

// Sign returns the hex encoded HMAC-SHA256 of message under secret.
func Sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyOAuthSignature checks claimedHMAC against the OAuth canonicalization of params.
// An empty secret is accepted with a logged warning; use Verifier to tell that case apart.
func VerifyOAuthSignature(params Params, claimedHMAC, secret string) bool {
	return New(secret).check(schemeOAuth, OAuthMessage(params), claimedHMAC, params).OK()
}

// VerifyProxySignature checks the "signature" parameter against the proxy canonicalization.
// An empty secret is accepted with a logged warning; use Verifier to tell that case apart.
func VerifyProxySignature(params Params, secret string) bool {
	return New(secret).Proxy(params).OK()
}

// compare decodes the claimed hex signature and compares digests in constant time.
// Undecodable or wrong-length claims are Malformed, never a panic.
func compare(message, claimed, secret string) Result {
	if claimed == "" {
		return Malformed
	}
	got, err := hex.DecodeString(claimed)
	if err != nil || len(got) != sha256.Size {
		return Malformed
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	if !hmac.Equal(mac.Sum(nil), got) {
		return Mismatch
	}
	return Verified
}
