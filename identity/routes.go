package identity

// Identity API paths, relative to the identity service base URL
const (
	RouteLogin         = "/api/auth/login"
	RouteRegister      = "/api/auth/register"
	RouteMe            = "/api/auth/me"
	RouteRefresh       = "/api/auth/refresh"
	RouteGoogleLogin   = "/api/auth/google"
	RouteGoogleAuthURL = "/oauth2/authorization/google"
)
