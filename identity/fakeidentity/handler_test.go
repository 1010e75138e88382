package fakeidentity_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/identity/fakeidentity"
)

func TestHandler_GoogleAuthorizeRedirectsWithTokens(t *testing.T) {
	s, _ := setupService(t, fakeidentity.WithCallbackURL("http://localhost:3000/auth/callback?from=google"))

	req := httptest.NewRequest(http.MethodGet, identity.RouteGoogleAuthURL, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/auth/callback", location.Path)
	require.Equal(t, "google", location.Query().Get("from"))
	require.NotEmpty(t, location.Query().Get("access_token"))
	require.NotEmpty(t, location.Query().Get("refresh_token"))
}

func TestHandler_GoogleAuthorizeWithoutCallback(t *testing.T) {
	s, _ := setupService(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, identity.RouteGoogleAuthURL, nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MalformedBody(t *testing.T) {
	s, _ := setupService(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, identity.RouteLogin, strings.NewReader("{")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_request")
}

func TestHandler_MeRequiresBearer(t *testing.T) {
	s, _ := setupService(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, identity.RouteMe, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
