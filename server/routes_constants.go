package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages the BFF answers for the dashboard
	RouteIndex = "/{$}"
	RouteLogin = "/login"

	// Auth Routes - Session lifecycle
	RouteAuthLogin          = "/auth/login"
	RouteAuthRegister       = "/auth/register"
	RouteAuthLogout         = "/auth/logout"
	RouteAuthRefresh        = "/auth/refresh"
	RouteAuthGoogle         = "/auth/google"
	RouteAuthGoogleCallback = "/auth/google/callback"
	RouteAuthCallback       = "/auth/callback"

	// API Routes
	RouteAPISession         = "/api/session"
	RouteAPIProjects        = "/api/projects"
	RouteAPIProject         = "/api/projects/{id}"
	RouteAPIProjectChapters = "/api/projects/{id}/chapters"
	RouteAPIChapter         = "/api/chapters/{id}"
	RouteAPIComments        = "/api/comments"
	RouteAPICommentReplies  = "/api/comments/{id}/replies"
	RouteAPIFollowers       = "/api/followers"
	RouteAPIFollowerToggle  = "/api/followers/{id}/toggle"
	RouteAPIProfile         = "/api/profile"
	RouteAPIProfilePassword = "/api/profile/password"

	RouteMetrics = "/metrics"
)
