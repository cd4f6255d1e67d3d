package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/atinroy/leetly-web/server/authflowrepo"
)

// AuthStartHandler begins the authorization-code flow: it parks the PKCE
// verifier, nonce and return URL under a fresh state value and redirects
// the user-agent to the identity provider.
func (s *Server) AuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := r.URL.Query().Get("callbackUrl")
		if returnURL == "" {
			returnURL = RouteDashboard
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			log.Err(err).Msg("Sign-in: provider discovery failed")
			http.Error(w, "Identity provider unavailable", http.StatusBadGateway)
			return
		}

		state := generateRandomString(32)
		nonce := generateRandomString(32)
		codeVerifier := generateRandomString(32)

		if err := s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: codeVerifier,
			Nonce:        nonce,
			ReturnURL:    returnURL,
			CreatedAt:    time.Now(),
		}); err != nil {
			log.Err(err).Msg("Sign-in: failed to store auth flow state")
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}

		authURL := oidcConfig.OAuth2Config.AuthCodeURL(state,
			oauth2.SetAuthURLParam("nonce", nonce),
			oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(codeVerifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// CallbackHandler completes the authorization-code flow: it validates the
// state, exchanges the code for tokens, verifies the ID token (including
// the nonce) and issues the session cookie.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both query params and POST form data
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		authState, err := s.authState.Get(state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// State is single-use
		if err := s.authState.Delete(state); err != nil {
			http.Error(w, "Invalid state parameter", http.StatusInternalServerError)
			return
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			log.Err(err).Msg("Callback: provider discovery failed")
			http.Error(w, "Identity provider unavailable", http.StatusBadGateway)
			return
		}

		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", authState.CodeVerifier),
		)
		if err != nil {
			log.Err(err).Msg("Callback: token exchange failed")
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusBadGateway)
			return
		}

		idToken, err := oidcConfig.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			log.Err(err).Msg("Callback: ID token verification failed")
			http.Error(w, "ID token verification failed", http.StatusUnauthorized)
			return
		}

		// Validate nonce to prevent replay attacks
		if idToken.Nonce != authState.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		// Some providers omit expires_in; a zero expiry would write a
		// record that is already expired. Fall back to a short lifetime so
		// the first refresh sorts out the real one.
		expiry := oauth2Token.Expiry
		if expiry.IsZero() {
			expiry = time.Now().Add(time.Minute)
		}

		_, cookieValue, err := s.sessions.Issue(
			oauth2Token.AccessToken,
			oauth2Token.RefreshToken,
			expiry.Unix(),
		)
		if err != nil {
			log.Err(err).Msg("Callback: failed to issue session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		s.setSessionCookie(w, r, cookieValue)

		returnURL := authState.ReturnURL
		if returnURL == "" || returnURL == "/" {
			returnURL = RouteDashboard
		}
		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// SignOutHandler destroys the local session and fires the best-effort
// provider-side logout. The local sign-out always succeeds regardless of
// the provider call's outcome.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := func() {
			s.clearSessionCookie(w, r)
			returnURL := r.URL.Query().Get("callbackUrl")
			if returnURL == "" {
				returnURL = "/"
			}
			http.Redirect(w, r, returnURL, http.StatusSeeOther)
		}

		raw, ok := s.sessionCookieValue(r)
		if !ok {
			redirect()
			return
		}

		sess, err := s.sessions.Peek(raw)
		if err != nil {
			log.Err(err).Msg("Sign-out: invalid session cookie")
			redirect()
			return
		}

		if sess.RefreshToken != "" {
			if err := s.idp.Logout(r.Context(), sess.RefreshToken); err != nil {
				log.Err(err).Str("session_id", sess.ID).Msg("Sign-out: provider logout failed")
			}
		}

		redirect()
	}
}

type sessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     int64  `json:"expiresAt,omitempty"`
	Error         string `json:"error,omitempty"`
}

// SessionStatusHandler is the session accessor surfaced to the UI layer.
// It reports the state of the session, never the tokens themselves, and
// performs the same sliding refresh as any other access.
func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(w, r)
		if !ok {
			writeJSON(w, http.StatusOK, sessionStatus{Authenticated: false})
			return
		}

		writeJSON(w, http.StatusOK, sessionStatus{
			Authenticated: sess.Authenticated(),
			ExpiresAt:     sess.ExpiresAt,
			Error:         string(sess.Error),
		})
	}
}
