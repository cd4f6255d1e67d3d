package server

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc("GET "+RouteAuthStart, ChainMiddleware(s.AuthStartHandler(), s.StandardMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.StandardMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.StandardMiddleware()...)) // For form_post response mode
	s.RegisterRouteFunc("GET "+RouteAuthSignOut, ChainMiddleware(s.SignOutHandler(), s.StandardMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthSession, ChainMiddleware(s.SessionStatusHandler(), s.StandardMiddleware()...))

	// API
	s.RegisterRouteFunc("GET "+RouteLeetCodeLookup, ChainMiddleware(s.LeetCodeLookupHandler(), s.StandardMiddleware()...))
	s.RegisterRouteFunc(RouteAPIPrefix, ChainMiddleware(s.APIProxyHandler(), s.StandardMiddleware()...))
}
