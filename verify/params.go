package verify

import (
	"net/url"
	"sort"
	"strings"
)

const (
	// OAuthSignatureKey is the query key carrying the OAuth/install HMAC.
	OAuthSignatureKey = "hmac"
	// ProxySignatureKey is the query key carrying the app proxy signature.
	ProxySignatureKey = "signature"
)

// Params is a flattened set of request query parameters.
type Params map[string]string

// ParamsFromQuery flattens query values. Repeated keys are joined with "," which is how the
// platform signs multi-valued app proxy parameters.
func ParamsFromQuery(q url.Values) Params {
	p := make(Params, len(q))
	for k, v := range q {
		p[k] = strings.Join(v, ",")
	}
	return p
}

// Has reports whether key is present with a non-empty value.
func (p Params) Has(key string) bool {
	return p[key] != ""
}

// canonicalize sorts every key except exclude and joins "key=value" pairs with sep.
// p is never modified.
func canonicalize(p Params, exclude, sep string) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == exclude {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p[k])
	}
	return b.String()
}
