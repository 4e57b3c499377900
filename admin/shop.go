package admin

import (
	"regexp"
	"strings"
)

const shopDomainSuffix = ".myshopify.com"

var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-]*\.myshopify\.com$`)

// ValidShopDomain reports whether shop is a platform shop domain. Only such hosts are ever
// contacted with app credentials.
func ValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// ShopHandle strips the platform suffix, e.g. "acme.myshopify.com" -> "acme".
func ShopHandle(shop string) string {
	return strings.TrimSuffix(shop, shopDomainSuffix)
}

// ShopURL is the default base URL for a shop's admin endpoints.
func ShopURL(shop string) string {
	return "https://" + shop
}
