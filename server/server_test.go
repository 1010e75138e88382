package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/OlmosJT/studio-tarjimon-io/auth"
	"github.com/OlmosJT/studio-tarjimon-io/comments"
	"github.com/OlmosJT/studio-tarjimon-io/followers"
	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/identity/fakeidentity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/config"
	"github.com/OlmosJT/studio-tarjimon-io/profiles"
	"github.com/OlmosJT/studio-tarjimon-io/projects"
	"github.com/OlmosJT/studio-tarjimon-io/server"
	"github.com/OlmosJT/studio-tarjimon-io/session"
)

type serverFixture struct {
	server   *server.Server
	identity *fakeidentity.Service
	cache    *session.MemoryUserCache
}

func setupTestFixture(t *testing.T) *serverFixture {
	t.Helper()
	config.ResetFile()

	idp, err := fakeidentity.New("test-secret")
	require.NoError(t, err)

	profileRepo, err := profiles.NewInMemoryRepo(profiles.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	cache := session.NewMemoryUserCache(0)
	t.Cleanup(cache.Close)

	srv, err := server.New(config.New(), server.Deps{
		Transport: idp,
		UserCache: cache,
		Projects:  projects.NewInMemoryRepo(),
		Comments:  comments.NewInMemoryRepo(),
		Followers: followers.NewInMemoryRepo(0),
		Profiles:  profileRepo,
	})
	require.NoError(t, err)

	return &serverFixture{server: srv, identity: idp, cache: cache}
}

func (f *serverFixture) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

// login signs the demo user in and returns the session cookies
func (f *serverFixture) login(t *testing.T) map[string]*http.Cookie {
	t.Helper()
	rec := f.do(loginForm(fakeidentity.DemoEmail, fakeidentity.DemoPassword))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return cookieMap(rec)
}

func loginForm(email, password string) *http.Request {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func cookieMap(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	return cookies
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndexRedirectsToLogin(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
}

func TestLoginForm_SetsCookiesAndRedirects(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(loginForm(fakeidentity.DemoEmail, fakeidentity.DemoPassword))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard/projects", rec.Header().Get("Location"))

	cookies := cookieMap(rec)
	require.Contains(t, cookies, session.AccessTokenKey)
	require.Contains(t, cookies, session.RefreshTokenKey)
	require.Equal(t, 15*60, cookies[session.AccessTokenKey].MaxAge)
	require.Equal(t, 7*24*60*60, cookies[session.RefreshTokenKey].MaxAge)
	require.False(t, cookies[session.AccessTokenKey].HttpOnly)
	require.False(t, cookies[session.RefreshTokenKey].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[session.AccessTokenKey].SameSite)
	require.Equal(t, 1, f.cache.Len())
}

func TestLoginForm_HTTPOnlyCookiesWhenConfigured(t *testing.T) {
	t.Setenv("COOKIE_HTTP_ONLY", "true")
	f := setupTestFixture(t)

	cookies := f.login(t)

	require.True(t, cookies[session.AccessTokenKey].HttpOnly)
	require.True(t, cookies[session.RefreshTokenKey].HttpOnly)
}

func TestLoginForm_WrongPasswordRedirectsWithMessage(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(loginForm(fakeidentity.DemoEmail, "wrong"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, server.RouteLogin, location.Path)
	require.Equal(t, auth.MsgInvalidCredentials, location.Query().Get("error"))
	require.NotContains(t, cookieMap(rec), session.AccessTokenKey)
}

func TestLoginJSON_Failure(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, server.RouteAuthLogin, `{"email":"test@demo.com","password":"nope"}`))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	require.Equal(t, false, body["authenticated"])
	require.Equal(t, auth.MsgInvalidCredentials, body["error"])
}

func TestLoginJSON_Success(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, server.RouteAuthLogin, `{"email":"test@demo.com","password":"password"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, true, body["authenticated"])
	require.Equal(t, "/dashboard/projects", body["redirect"])
	user := body["user"].(map[string]any)
	require.Equal(t, fakeidentity.DemoEmail, user["email"])
}

func TestRegisterJSON_ConflictOnExistingEmail(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, server.RouteAuthRegister,
		`{"email":"test@demo.com","password":"Secret123!","firstName":"A","lastName":"B"}`))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, auth.MsgRegistrationFailed, decode(t, rec)["error"])
}

func TestRegisterForm_RedirectsToDashboard(t *testing.T) {
	f := setupTestFixture(t)

	form := url.Values{
		"email":     {"new@demo.com"},
		"password":  {"Secret123!"},
		"firstName": {"New"},
		"lastName":  {"User"},
	}
	req := httptest.NewRequest(http.MethodPost, server.RouteAuthRegister, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.NotEmpty(t, cookieMap(rec)[session.AccessTokenKey].Value)
}

func TestProtectedAPI_UnauthorizedWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAPIProjects, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "unauthorized", body["error"])
	require.Equal(t, server.RouteLogin, body["redirect"])
}

func TestProtectedAPI_WithSession(t *testing.T) {
	f := setupTestFixture(t)
	cookies := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAPIProjects, nil),
		cookies[session.AccessTokenKey], cookies[session.RefreshTokenKey])

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Len(t, body["projects"], 3)
	require.Contains(t, body, "active")
	require.Contains(t, body, "limit_reached")
}

func TestProtectedAPI_SilentRefreshWithOnlyRefreshCookie(t *testing.T) {
	f := setupTestFixture(t)
	cookies := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAPIFollowers, nil), cookies[session.RefreshTokenKey])

	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := cookieMap(rec)
	require.NotEmpty(t, refreshed[session.AccessTokenKey].Value)
	require.NotEmpty(t, refreshed[session.RefreshTokenKey].Value)
	require.NotEqual(t, cookies[session.RefreshTokenKey].Value, refreshed[session.RefreshTokenKey].Value)
}

func TestProtectedAPI_InvalidRefreshCookieClearsSession(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAPIFollowers, nil),
		&http.Cookie{Name: session.RefreshTokenKey, Value: "garbage"})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	cleared := cookieMap(rec)
	require.Contains(t, cleared, session.RefreshTokenKey)
	require.Less(t, cleared[session.RefreshTokenKey].MaxAge, 0)
}

func TestSessionEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAPISession, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, false, body["authenticated"])
	require.Nil(t, body["user"])

	cookies := f.login(t)
	rec = f.do(httptest.NewRequest(http.MethodGet, server.RouteAPISession, nil), cookies[session.AccessTokenKey])
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	require.Equal(t, true, body["authenticated"])
	require.Equal(t, fakeidentity.DemoEmail, body["user"].(map[string]any)["email"])
}

func TestLogout_ClearsCookies(t *testing.T) {
	f := setupTestFixture(t)
	cookies := f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthLogout, nil),
		cookies[session.AccessTokenKey], cookies[session.RefreshTokenKey])

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteLogin, rec.Header().Get("Location"))
	cleared := cookieMap(rec)
	require.Less(t, cleared[session.AccessTokenKey].MaxAge, 0)
	require.Less(t, cleared[session.RefreshTokenKey].MaxAge, 0)
	require.Equal(t, 0, f.cache.Len())
}

func TestRefreshEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, false, decode(t, rec)["refreshed"])

	cookies := f.login(t)
	rec = f.do(httptest.NewRequest(http.MethodPost, server.RouteAuthRefresh, nil), cookies[session.RefreshTokenKey])
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["refreshed"])
}

func TestTokenCallback(t *testing.T) {
	f := setupTestFixture(t)
	resp, err := f.identity.Login(context.Background(), identity.LoginCredentials{
		Email:    fakeidentity.DemoEmail,
		Password: fakeidentity.DemoPassword,
	})
	require.NoError(t, err)

	query := url.Values{"access_token": {resp.AccessToken}, "refresh_token": {resp.RefreshToken}}
	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthCallback+"?"+query.Encode(), nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard/projects", rec.Header().Get("Location"))
	require.Equal(t, resp.AccessToken, cookieMap(rec)[session.AccessTokenKey].Value)
}

func TestTokenCallback_RejectsBadToken(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthCallback+"?access_token=bad&refresh_token=bad", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, server.RouteLogin, location.Path)
	require.Equal(t, auth.MsgGoogleSignInFailed, location.Query().Get("error"))
}

func TestGoogleLogin_UsesIdentityBackendWithoutClient(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthGoogle, nil))

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, f.identity.GoogleAuthURL(), rec.Header().Get("Location"))
}

func TestGoogleCallback_NotConfigured(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteAuthGoogleCallback+"?state=s&code=c", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginPage(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteLogin+"?error=oops", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "oops", body["error"])
	require.Equal(t, server.RouteAuthGoogle, body["google_url"])
}

func TestReplyToComment_UsesSessionUser(t *testing.T) {
	f := setupTestFixture(t)
	cookies := f.login(t)

	req := jsonRequest(http.MethodPost, "/api/comments/uuid-c1/replies", `{"content":"Thanks!"}`)
	rec := f.do(req, cookies[session.AccessTokenKey])

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "u1", body["user_id"])
	require.Equal(t, "Thanks!", body["content"])
	require.Equal(t, "chapter-uuid-1", body["chapter_id"])
}

func TestChapterLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	cookies := f.login(t)
	access := cookies[session.AccessTokenKey]

	rec := f.do(jsonRequest(http.MethodPost, "/api/projects/"+projects.KingsAvatarID+"/chapters", `{"title":"Chapter 99","sequence":99}`), access)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	require.Equal(t, string(projects.ChapterDraft), created["status"])

	rec = f.do(jsonRequest(http.MethodPatch, "/api/chapters/"+created["id"].(string), `{"status":"PUBLISHED"}`), access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, decode(t, rec)["published_at"])

	rec = f.do(jsonRequest(http.MethodPatch, "/api/chapters/missing", `{"status":"PUBLISHED"}`), access)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/projects/missing", nil), access)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfile_UpdateAndPassword(t *testing.T) {
	f := setupTestFixture(t)
	cookies := f.login(t)
	access := cookies[session.AccessTokenKey]

	rec := f.do(jsonRequest(http.MethodPatch, server.RouteAPIProfile, `{"bio":"New bio"}`), access)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "New bio", body["bio"])
	require.Equal(t, fakeidentity.DemoEmail, body["email"])

	rec = f.do(jsonRequest(http.MethodPut, server.RouteAPIProfilePassword, `{"currentPassword":"wrong","newPassword":"Secret123!"}`), access)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(jsonRequest(http.MethodPut, server.RouteAPIProfilePassword, `{"currentPassword":"password","newPassword":"short"}`), access)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(jsonRequest(http.MethodPut, server.RouteAPIProfilePassword, `{"currentPassword":"password","newPassword":"Secret123!"}`), access)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, server.RouteAPIProjects, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := f.do(req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, server.RouteAPIProjects, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = f.do(req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteMetrics, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `studio_auth_operations_total{operation="login",outcome="success"} 1`)
}
