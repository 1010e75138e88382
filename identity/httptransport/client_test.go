package httptransport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/identity/fakeidentity"
	"github.com/OlmosJT/studio-tarjimon-io/identity/httptransport"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

type testFixture struct {
	backend *fakeidentity.Service
	server  *httptest.Server
	client  *httptransport.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend, err := fakeidentity.New("transport-test-secret")
	require.NoError(t, err)
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	return &testFixture{
		backend: backend,
		server:  server,
		client:  httptransport.New(server.URL+"/", httptransport.WithHTTPClient(server.Client())),
	}
}

func demoCredentials() identity.LoginCredentials {
	return identity.LoginCredentials{Email: fakeidentity.DemoEmail, Password: fakeidentity.DemoPassword}
}

func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.client.Login(context.Background(), demoCredentials())

	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, fakeidentity.DemoEmail, resp.User.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.client.Login(context.Background(), identity.LoginCredentials{Email: fakeidentity.DemoEmail, Password: "nope"})

	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	require.Contains(t, err.Error(), "status 401")
}

func TestRegister_Conflict(t *testing.T) {
	f := setupTestFixture(t)
	creds := identity.RegisterCredentials{Email: fakeidentity.DemoEmail, Password: "Secret123", FirstName: "A", LastName: "B"}

	_, err := f.client.Register(context.Background(), creds)

	require.ErrorIs(t, err, errors.ErrRegistrationConflict)
}

func TestRegister_Success(t *testing.T) {
	f := setupTestFixture(t)
	creds := identity.RegisterCredentials{Email: "rustam@example.com", Password: "Secret123", FirstName: "Rustam", LastName: "Aliyev"}

	resp, err := f.client.Register(context.Background(), creds)

	require.NoError(t, err)
	require.Equal(t, "Rustam", resp.User.FirstName)
}

func TestFetchUser(t *testing.T) {
	f := setupTestFixture(t)
	resp, err := f.client.Login(context.Background(), demoCredentials())
	require.NoError(t, err)

	user, err := f.client.FetchUser(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User, *user)

	_, err = f.client.FetchUser(context.Background(), "garbage")
	require.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	resp, err := f.client.Login(context.Background(), demoCredentials())
	require.NoError(t, err)

	refreshed, err := f.client.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	_, err = f.client.RefreshToken(context.Background(), resp.RefreshToken)
	require.ErrorIs(t, err, errors.ErrRefreshInvalid)
}

func TestNetworkFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.server.Close()

	_, err := f.client.Login(context.Background(), demoCredentials())

	require.ErrorIs(t, err, errors.ErrNetwork)
}

func TestUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream down"}`))
	}))
	t.Cleanup(server.Close)
	client := httptransport.New(server.URL)

	_, err := client.Login(context.Background(), demoCredentials())

	require.ErrorIs(t, err, errors.ErrUnexpectedStatus)
	require.False(t, errors.Is(err, errors.ErrInvalidCredentials))
	var se *httptransport.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "upstream down", se.Description)
}

func TestAuthResponseWithoutTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"","refresh_token":"","user":{"id":"u1","email":"test@demo.com"}}`))
	}))
	t.Cleanup(server.Close)
	client := httptransport.New(server.URL)

	_, err := client.Login(context.Background(), demoCredentials())
	require.ErrorIs(t, err, errors.ErrUnexpectedStatus)

	_, err = client.RefreshToken(context.Background(), "refresh")
	require.ErrorIs(t, err, errors.ErrUnexpectedStatus)

	_, err = client.LoginWithGoogle(context.Background(), "id-token")
	require.ErrorIs(t, err, errors.ErrUnexpectedStatus)
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)
	client := httptransport.New(server.URL, httptransport.WithTimeout(50*time.Millisecond))

	_, err := client.FetchUser(context.Background(), "token")

	require.ErrorIs(t, err, errors.ErrNetwork)
}

func TestGoogleAuthURL(t *testing.T) {
	client := httptransport.New("http://localhost:8080/")

	require.Equal(t, "http://localhost:8080/oauth2/authorization/google", client.GoogleAuthURL())
}
