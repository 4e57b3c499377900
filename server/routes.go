package server

func (s *Server) initRoutes() {
	// Merchant install
	s.RegisterRouteHandler("GET "+RouteInstall, ChainMiddleware(s.InstallHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))

	// Customer session
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRenew, ChainMiddleware(s.RenewHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthOrders, ChainMiddleware(s.OrdersHandler(), s.APIMiddleware()...))

	// CORS preflight for the browser facing routes
	for _, route := range []string{RouteAuthLogin, RouteAuthLogout, RouteAuthSession, RouteAuthRenew, RouteAuthOrders} {
		s.RegisterRouteHandler("OPTIONS "+route, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	}

	// App proxy
	s.RegisterRouteHandler("GET "+RouteProxyCustomer, ChainMiddleware(s.ProxyCustomerHandler(), s.APIMiddleware()...))

	// Operations
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if s.metrics != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	}
}
