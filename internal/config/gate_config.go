package config

import "strings"

type GateConfig interface {
	GetPublicPaths() []string
	GetGateBypassPrefixes() []string
	GetSignInPath() string
	GetSessionCookieName() string
}

type Gate struct{}

var _ GateConfig = Gate{}

// GetPublicPaths returns the exact paths reachable without a session.
// Overridable via PUBLIC_PATHS as a comma-separated list.
func (Gate) GetPublicPaths() []string {
	value := GetEnv("PUBLIC_PATHS", "")
	if value == "" {
		return []string{"/", "/privacy", "/about", "/terms", "/sign-in"}
	}
	paths := strings.Split(value, ",")
	for i := range paths {
		paths[i] = strings.TrimSpace(paths[i])
	}
	return paths
}

// GetGateBypassPrefixes returns path prefixes the gate never inspects.
// The auth endpoints must stay reachable without a session, and API
// requests carry their own 401 semantics instead of a redirect.
func (Gate) GetGateBypassPrefixes() []string {
	return []string{"/api", "/auth"}
}

func (Gate) GetSignInPath() string {
	return "/sign-in"
}

// GetSessionCookieName returns the base cookie name. The "__Secure-"
// prefixed variant is used on HTTPS deployments.
func (Gate) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "leetly.session-token")
}
