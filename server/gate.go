package server

import (
	"net/http"
	"net/url"
	"strings"
)

// RouteGate decides allow vs redirect-to-sign-in from the request path and
// the presence of a session cookie. It is the optimistic half of a layered
// check: cheap cookie existence at the edge here, authoritative expiry and
// signature validation later in the session manager when the token is
// actually used.
func (s *Server) RouteGate(next http.Handler) http.Handler {
	publicPaths := make(map[string]struct{})
	for _, path := range s.config.GetPublicPaths() {
		publicPaths[path] = struct{}{}
	}
	// The sign-in page is always reachable, whatever the configured list
	// says, or the redirect below would loop onto itself.
	publicPaths[s.config.GetSignInPath()] = struct{}{}
	bypassPrefixes := s.config.GetGateBypassPrefixes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		for _, prefix := range bypassPrefixes {
			if strings.HasPrefix(path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		if _, ok := publicPaths[path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		if !s.hasSessionCookie(r) {
			// Preserve the destination so sign-in can return the user there.
			signInURL := s.config.GetSignInPath() + "?" + url.Values{"callbackUrl": {path}}.Encode()
			http.Redirect(w, r, signInURL, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
