package server

// Route path constants
const (
	// Merchant install
	RouteInstall       = "/install"
	RouteOAuthCallback = "/oauth/callback"

	// Customer session
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthSession = "/auth/session"
	RouteAuthRenew   = "/auth/renew"
	RouteAuthOrders  = "/auth/orders"

	// App proxy
	RouteProxyCustomer = "/proxy/customer"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
