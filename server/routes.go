package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, s.IndexHandler())

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))

	// GOOGLE
	s.RegisterRouteHandler("GET "+RouteAuthGoogle, ChainMiddleware(s.GoogleLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthGoogleCallback, ChainMiddleware(s.GoogleCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthCallback, ChainMiddleware(s.TokenCallbackHandler(), s.APIMiddleware()...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// Dashboard API routes (require an authenticated session)
	s.RegisterRouteHandler("GET "+RouteAPIProjects, ChainMiddleware(s.ListProjectsHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteAPIProject, ChainMiddleware(s.GetProjectHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteAPIProjectChapters, ChainMiddleware(s.ListChaptersHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteAPIProjectChapters, ChainMiddleware(s.CreateChapterHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("PATCH "+RouteAPIChapter, ChainMiddleware(s.UpdateChapterStatusHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteAPIComments, ChainMiddleware(s.ListCommentsHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteAPICommentReplies, ChainMiddleware(s.ReplyToCommentHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteAPIFollowers, ChainMiddleware(s.ListFollowersHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteAPIFollowerToggle, ChainMiddleware(s.ToggleFollowHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteAPIProfile, ChainMiddleware(s.GetProfileHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("PATCH "+RouteAPIProfile, ChainMiddleware(s.UpdateProfileHandler(), s.APIMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("PUT "+RouteAPIProfilePassword, ChainMiddleware(s.UpdatePasswordHandler(), s.APIMiddleware(s.RequireSession())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.deps.Metrics.Handler())

	for prefix, handler := range s.deps.Mounts {
		s.RegisterRouteHandler(prefix, http.StripPrefix(strings.TrimSuffix(prefix, "/"), handler))
	}
}
