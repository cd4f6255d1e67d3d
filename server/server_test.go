package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atinroy/leetly-web/idp"
	"github.com/atinroy/leetly-web/internal/config"
	"github.com/atinroy/leetly-web/leetcode"
	"github.com/atinroy/leetly-web/server"
	"github.com/atinroy/leetly-web/server/authflowrepo"
	"github.com/atinroy/leetly-web/session"
)

var fixedNow = time.Unix(1_700_000_000, 0)

// testConfig is the in-memory configuration the server tests run against.
// Fields left zero fall back to the production defaults.
type testConfig struct {
	config.EnvVars
	config.Auth
	config.Gate

	issuer      string
	apiBaseURL  string
	publicPaths []string
}

func (c testConfig) GetIssuerURL() string {
	if c.issuer != "" {
		return c.issuer
	}
	return "http://localhost:8081/realms/leetly"
}

func (testConfig) GetClientID() string      { return "leetly-web" }
func (testConfig) GetSessionSecret() string { return "test-session-secret" }

func (c testConfig) GetAPIBaseURL() string {
	if c.apiBaseURL != "" {
		return c.apiBaseURL
	}
	return c.EnvVars.GetAPIBaseURL()
}

func (c testConfig) GetPublicPaths() []string {
	if c.publicPaths != nil {
		return c.publicPaths
	}
	return c.Gate.GetPublicPaths()
}

type fakeRefresher struct {
	calls  int
	tokens *idp.TokenSet
	err    error
}

func (f *fakeRefresher) Refresh(_ context.Context, _ string) (*idp.TokenSet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens, nil
}

type fakeIdentityProvider struct {
	loggedOutTokens []string
	err             error
}

func (f *fakeIdentityProvider) Logout(_ context.Context, refreshToken string) error {
	f.loggedOutTokens = append(f.loggedOutTokens, refreshToken)
	return f.err
}

func newTestServer(t *testing.T, cfg testConfig, refresher session.Refresher, provider server.IdentityProvider) (*server.Server, *session.Manager) {
	t.Helper()

	sessions, err := session.NewManager(cfg, refresher, session.WithNowTime(func() time.Time {
		return fixedNow
	}))
	require.NoError(t, err)

	srv, err := server.New(cfg, sessions, provider, authflowrepo.NewInMemoryRepo(), leetcode.NewClient())
	require.NoError(t, err)
	return srv, sessions
}
