// Package server is the HTTP face of the BFF. Every request gets its own
// session.State over the browser's cookies and an auth.Controller that
// steers the response.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/auth"
	"github.com/OlmosJT/studio-tarjimon-io/comments"
	"github.com/OlmosJT/studio-tarjimon-io/followers"
	"github.com/OlmosJT/studio-tarjimon-io/googlesignin"
	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/config"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/internal/metrics"
	"github.com/OlmosJT/studio-tarjimon-io/profiles"
	"github.com/OlmosJT/studio-tarjimon-io/projects"
	"github.com/OlmosJT/studio-tarjimon-io/session"
)

// Deps are the collaborators the server is built from. Google is optional;
// without it Google sign-in goes through the identity backend.
type Deps struct {
	Transport identity.Transport
	UserCache session.UserCache
	Google    *googlesignin.SignIn
	Metrics   *metrics.Registry

	Projects  projects.Repo
	Comments  comments.Repo
	Followers followers.Repo
	Profiles  profiles.Repo

	// Mounts serves extra handlers under a path prefix such as "/identity/"
	Mounts map[string]http.Handler
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	deps    Deps
	cookies session.CookieOptions
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Transport == nil {
		return nil, errors.New("[Server New] identity transport is required")
	}
	if deps.Projects == nil || deps.Comments == nil || deps.Followers == nil || deps.Profiles == nil {
		return nil, errors.New("[Server New] dashboard repositories are required")
	}
	if deps.UserCache == nil {
		deps.UserCache = session.NewMemoryUserCache(0)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		deps:   deps,
		cookies: session.CookieOptions{
			SameSite: cfg.GetCookieSameSite(),
			Secure:   cfg.GetCookieSecure(),
			HTTPOnly: cfg.GetCookieHTTPOnly(),
			Prefix:   cfg.GetCookiePrefix(),
		},
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Routes are registered per method, so preflights are answered here.
	if r.Method == http.MethodOptions {
		s.CorsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// newController builds the session of the calling browser, bound to this
// request's cookies.
func (s *Server) newController(w http.ResponseWriter, r *http.Request) (*auth.Controller, *navigator) {
	state := session.NewState(
		session.NewCookieStore(w, r, s.cookies),
		session.WithLifetimes(s.config.GetAccessTokenMaxAge(), s.config.GetRefreshTokenMaxAge()),
		session.WithUserCache(s.deps.UserCache, s.config.GetUserCacheTTL()),
	)
	nav := &navigator{}
	ctl, err := auth.New(s.deps.Transport, state, nav,
		auth.WithLogger(log.Logger.With().Str("path", r.URL.Path).Logger()),
		auth.WithMetrics(s.deps.Metrics),
	)
	if err != nil {
		// Transport and state are never nil here.
		panic(err)
	}
	return ctl, nav
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
