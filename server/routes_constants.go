package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthStart    = "/auth/start"
	RouteAuthCallback = "/auth/callback"
	RouteAuthSignOut  = "/auth/sign-out"
	RouteAuthSession  = "/auth/session"

	// Frontend routes the gateway redirects to
	RouteSignIn    = "/sign-in"
	RouteDashboard = "/dashboard"

	// API Routes
	RouteLeetCodeLookup = "/api/leetcode"
	RouteAPIPrefix      = "/api/"
)
