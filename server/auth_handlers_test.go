package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/atinroy/leetly-web/internal/errors"
	"github.com/atinroy/leetly-web/idp"
)

func TestSessionStatusWithoutCookie(t *testing.T) {
	srv, _ := newTestServer(t, testConfig{}, &fakeRefresher{}, &fakeIdentityProvider{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
}

func TestSessionStatusWithValidSession(t *testing.T) {
	srv, sessions := newTestServer(t, testConfig{}, &fakeRefresher{}, &fakeIdentityProvider{})

	expiresAt := fixedNow.Unix() + 3600
	_, cookie, err := sessions.Issue("A1", "R1", expiresAt)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "leetly.session-token", Value: cookie})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, fmt.Sprintf(`{"authenticated":true,"expiresAt":%d}`, expiresAt), rec.Body.String())
}

func TestSessionStatusReportsRefreshFailure(t *testing.T) {
	refresher := &fakeRefresher{err: apperrors.ErrRefreshRejected}
	srv, sessions := newTestServer(t, testConfig{}, refresher, &fakeIdentityProvider{})

	expiresAt := fixedNow.Unix() - 10
	_, cookie, err := sessions.Issue("A1", "R1", expiresAt)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "leetly.session-token", Value: cookie})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Authenticated bool   `json:"authenticated"`
		Error         string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.False(t, status.Authenticated)
	require.Equal(t, "RefreshTokenError", status.Error)

	// The errored record is persisted back to the cookie
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.NotEqual(t, cookie, cookies[0].Value)
}

func TestSessionStatusRefreshesExpiredSession(t *testing.T) {
	refresher := &fakeRefresher{tokens: &idp.TokenSet{
		AccessToken: "A2",
		ExpiresAt:   fixedNow.Unix() + 3600,
	}}
	srv, sessions := newTestServer(t, testConfig{}, refresher, &fakeIdentityProvider{})

	_, cookie, err := sessions.Issue("A1", "R1", fixedNow.Unix()-10)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "leetly.session-token", Value: cookie})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, fmt.Sprintf(`{"authenticated":true,"expiresAt":%d}`, fixedNow.Unix()+3600), rec.Body.String())
	require.Equal(t, 1, refresher.calls)
}

func TestSignOutClearsCookieAndNotifiesProvider(t *testing.T) {
	provider := &fakeIdentityProvider{}
	srv, sessions := newTestServer(t, testConfig{}, &fakeRefresher{}, provider)

	_, cookie, err := sessions.Issue("A1", "R1", fixedNow.Unix()+3600)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "leetly.session-token", Value: cookie})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Equal(t, []string{"R1"}, provider.loggedOutTokens)

	// Both cookie variants are expired
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		require.Negative(t, c.MaxAge, c.Name)
		require.Empty(t, c.Value, c.Name)
	}
}

func TestSignOutSucceedsWhenProviderLogoutFails(t *testing.T) {
	provider := &fakeIdentityProvider{err: apperrors.ErrLogoutRejected}
	srv, sessions := newTestServer(t, testConfig{}, &fakeRefresher{}, provider)

	_, cookie, err := sessions.Issue("A1", "R1", fixedNow.Unix()+3600)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-out", nil)
	req.AddCookie(&http.Cookie{Name: "leetly.session-token", Value: cookie})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSignOutWithoutCookieStillRedirects(t *testing.T) {
	provider := &fakeIdentityProvider{}
	srv, _ := newTestServer(t, testConfig{}, &fakeRefresher{}, provider)

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-out?callbackUrl=%2Fsign-in", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/sign-in", rec.Header().Get("Location"))
	require.Empty(t, provider.loggedOutTokens)
}
