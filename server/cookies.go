package server

import (
	"net/http"

	"github.com/atinroy/leetly-web/session"
	"github.com/rs/zerolog/log"
)

// securePrefix is prepended to the session cookie name on HTTPS
// deployments so browsers enforce the __Secure- cookie rules.
const securePrefix = "__Secure-"

func (s *Server) sessionCookieName(r *http.Request) string {
	if getScheme(r) == "https" {
		return securePrefix + s.config.GetSessionCookieName()
	}
	return s.config.GetSessionCookieName()
}

// sessionCookieValue returns the raw session cookie, accepting either the
// plain or the __Secure- prefixed variant.
func (s *Server) sessionCookieValue(r *http.Request) (string, bool) {
	base := s.config.GetSessionCookieName()
	for _, name := range []string{base, securePrefix + base} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value, true
		}
	}
	return "", false
}

// hasSessionCookie is the cheap existence check the route gate relies on.
// It deliberately does not decode or validate anything.
func (s *Server) hasSessionCookie(r *http.Request) bool {
	_, ok := s.sessionCookieValue(r)
	return ok
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, value string) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName(r),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionMaxAge().Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	isSecure := getScheme(r) == "https"
	base := s.config.GetSessionCookieName()

	for _, name := range []string{base, securePrefix + base} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// currentSession reconstitutes the session for this request and advances
// the refresh state machine, writing the rewritten cookie back when the
// record changed. The second return value reports whether a session cookie
// was present and decodable at all.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	raw, ok := s.sessionCookieValue(r)
	if !ok {
		return session.Session{}, false
	}

	sess, reissued, err := s.sessions.Resolve(r.Context(), raw)
	if err != nil {
		log.Err(err).Msg("Failed to resolve session cookie")
		return session.Session{}, false
	}

	if reissued != "" {
		s.setSessionCookie(w, r, reissued)
	}
	return sess, true
}
