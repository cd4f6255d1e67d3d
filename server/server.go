package server

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/atinroy/leetly-web/internal/config"
	apperrors "github.com/atinroy/leetly-web/internal/errors"
	"github.com/atinroy/leetly-web/leetcode"
	"github.com/atinroy/leetly-web/server/authflowrepo"
	"github.com/atinroy/leetly-web/session"
)

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

// IdentityProvider is the slice of the provider client the HTTP layer
// needs directly: the best-effort logout side effect at sign-out.
type IdentityProvider interface {
	Logout(ctx context.Context, refreshToken string) error
}

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	handler   http.Handler
	routes    []string
	config    config.Config
	sessions  *session.Manager
	idp       IdentityProvider
	authState authflowrepo.Repo
	leetcode  *leetcode.Client

	oidc     OidcConfig
	oidcSet  bool
	oidcLock sync.RWMutex
}

func New(cfg config.Config, sessions *session.Manager, provider IdentityProvider, authState authflowrepo.Repo, lookup *leetcode.Client) (*Server, error) {
	if err := config.ValidateAuth(cfg); err != nil {
		return nil, apperrors.Wrapf(err, "[Server New] invalid auth configuration")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		sessions:  sessions,
		idp:       provider,
		authState: authState,
		leetcode:  lookup,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	// Every request passes the route boundary gate before the mux.
	s.handler = s.RouteGate(s.mux)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}

// getOidcConfig lazily discovers the provider configuration for the
// configured issuer and caches it for the life of the process.
func (s *Server) getOidcConfig(ctx context.Context) (OidcConfig, error) {
	s.oidcLock.RLock()
	if s.oidcSet {
		cfg := s.oidc
		s.oidcLock.RUnlock()
		return cfg, nil
	}
	s.oidcLock.RUnlock()

	// The provider keeps this context for later JWKS fetches, so it must
	// outlive the request that happened to trigger discovery.
	provider, err := oidc.NewProvider(context.WithoutCancel(ctx), s.config.GetIssuerURL())
	if err != nil {
		return OidcConfig{}, apperrors.Wrapf(err, "[Server getOidcConfig] failed to create OIDC provider")
	}

	oidcConfig := OidcConfig{
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     s.config.GetClientID(),
			ClientSecret: s.config.GetClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  strings.TrimSuffix(s.config.GetPublicBaseURL(), "/") + RouteAuthCallback,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess},
		},
		OidcVerifier: provider.Verifier(&oidc.Config{
			ClientID: s.config.GetClientID(),
		}),
	}

	s.oidcLock.Lock()
	s.oidc = oidcConfig
	s.oidcSet = true
	s.oidcLock.Unlock()

	return oidcConfig, nil
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
