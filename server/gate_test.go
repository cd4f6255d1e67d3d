package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func gateFixture(t *testing.T) (http.Handler, *int) {
	t.Helper()

	srv, _ := newTestServer(t, testConfig{publicPaths: []string{"/", "/about"}}, &fakeRefresher{}, &fakeIdentityProvider{})

	var reached int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	})
	return srv.RouteGate(next), &reached
}

func TestGateRedirectsProtectedPathWithoutCookie(t *testing.T) {
	gate, reached := gateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/sign-in?callbackUrl=%2Fdashboard", rec.Header().Get("Location"))
	require.Zero(t, *reached)
}

func TestGateAllowsPublicPathsWithoutCookie(t *testing.T) {
	gate, reached := gateFixture(t)

	for _, path := range []string{"/", "/about"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	require.Equal(t, 2, *reached)
}

func TestGatePublicPathsMatchExactly(t *testing.T) {
	gate, reached := gateFixture(t)

	// "/about" is public, "/about/team" is not
	req := httptest.NewRequest(http.MethodGet, "/about/team", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/sign-in?callbackUrl=%2Fabout%2Fteam", rec.Header().Get("Location"))
	require.Zero(t, *reached)
}

func TestGateBypassesAuthAndAPIPrefixes(t *testing.T) {
	gate, reached := gateFixture(t)

	for _, path := range []string{"/auth/session", "/auth/callback", "/api/problems"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	require.Equal(t, 3, *reached)
}

func TestGateSignInPathPublicEvenWhenListOmitsIt(t *testing.T) {
	// An operator-supplied list without the sign-in page must not make the
	// gate redirect the sign-in page to itself
	srv, _ := newTestServer(t, testConfig{publicPaths: []string{"/"}}, &fakeRefresher{}, &fakeIdentityProvider{})

	var reached int
	gate := srv.RouteGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/sign-in", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))
	require.Equal(t, 1, reached)
}

func TestGateAdmitsAnyCookieWithoutValidation(t *testing.T) {
	gate, reached := gateFixture(t)

	// Presence is all the gate checks; validity is decided downstream
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "leetly.session-token", Value: "not-even-a-valid-token"})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, *reached)
}

func TestGateAcceptsSecurePrefixedCookie(t *testing.T) {
	gate, reached := gateFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "__Secure-leetly.session-token", Value: "opaque"})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, *reached)
}
