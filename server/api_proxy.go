package server

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/zerolog/log"
)

// APIProxyHandler forwards authenticated requests to the Leetly REST API,
// swapping the session cookie for the bearer access token. A session in
// the refresh-failed state is rejected here with 401 so the frontend
// prompts for a fresh sign-in instead of sending a stale token upstream
// and getting a confusing 401 from the backend.
func (s *Server) APIProxyHandler() http.HandlerFunc {
	target, err := url.Parse(s.config.GetAPIBaseURL())
	if err != nil {
		log.Err(err).Str("url", s.config.GetAPIBaseURL()).Msg("Invalid API base URL")
		return func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, http.StatusBadGateway, "api_unavailable")
		}
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Err(err).Str("path", r.URL.Path).Msg("API proxy error")
			writeJSONError(w, http.StatusBadGateway, "api_unavailable")
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(w, r)
		if !ok || !sess.Authenticated() {
			writeJSONError(w, http.StatusUnauthorized, "session_expired")
			return
		}

		// The backend only ever sees the bearer token, never the cookie.
		r.Header.Del("Cookie")
		r.Header.Set("Authorization", "Bearer "+sess.AccessToken)
		proxy.ServeHTTP(w, r)
	}
}
