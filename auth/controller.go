// Package auth drives the session lifecycle of one browsing context: login,
// registration, Google sign-in, silent refresh, logout and the page-load
// reconciliation that decides which of those applies.
package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/internal/metrics"
	"github.com/OlmosJT/studio-tarjimon-io/session"
)

// User-facing messages. The cause of a failure is never shown to the user.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgRegistrationFailed = "Registration failed. Email might be in use."
	MsgGoogleSignInFailed = "Google sign-in failed"
)

// Operation names used for logging and metrics
const (
	OpLogin         = "login"
	OpRegister      = "register"
	OpGoogle        = "google_redirect"
	OpGoogleIDToken = "google_id_token"
	OpCallback      = "callback"
	OpRefresh       = "refresh"
	OpLogout        = "logout"
	OpInitUser      = "init_user"
)

// Navigator is the browsing context the controller steers.
type Navigator interface {
	// NavigateTo moves to an in-app route
	NavigateTo(path string)
	// RedirectExternal leaves the application for url
	RedirectExternal(url string)
}

// Routes are the in-app destinations after each transition.
type Routes struct {
	AfterLogin    string
	AfterRegister string
	Login         string
}

func DefaultRoutes() Routes {
	return Routes{
		AfterLogin:    "/dashboard/projects",
		AfterRegister: "/dashboard",
		Login:         "/login",
	}
}

// Controller owns all behaviour around a session.State. Transport failures
// never escape it: they end up as a fixed message in the state or as a
// forced logout.
type Controller struct {
	transport identity.Transport
	state     *session.State
	nav       Navigator
	routes    Routes
	logger    zerolog.Logger
	metrics   metrics.Recorder

	mu          sync.Mutex
	lastFailure error
}

type Option func(*Controller)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = recorder
	}
}

func WithRoutes(routes Routes) Option {
	return func(c *Controller) {
		c.routes = routes
	}
}

// New creates a controller. nav may be nil when there is no browsing context,
// in which case navigation is skipped and LoginWithGoogle fails.
func New(transport identity.Transport, state *session.State, nav Navigator, options ...Option) (*Controller, error) {
	if transport == nil {
		return nil, errors.New("[auth.New] transport is required")
	}
	if state == nil {
		return nil, errors.New("[auth.New] session state is required")
	}

	c := &Controller{
		transport: transport,
		state:     state,
		nav:       nav,
		routes:    DefaultRoutes(),
		logger:    log.Logger,
		metrics:   metrics.Nop{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// State returns the session the controller operates on.
func (c *Controller) State() *session.State {
	return c.state
}

// Login exchanges credentials for a session and navigates to the projects
// dashboard. It reports whether the session was established.
func (c *Controller) Login(ctx context.Context, creds identity.LoginCredentials) bool {
	return c.authenticate(ctx, OpLogin, MsgInvalidCredentials, c.routes.AfterLogin, func() (*identity.AuthResponse, error) {
		return c.transport.Login(ctx, creds)
	})
}

// Register creates an account, signs in and navigates to the dashboard.
func (c *Controller) Register(ctx context.Context, creds identity.RegisterCredentials) bool {
	return c.authenticate(ctx, OpRegister, MsgRegistrationFailed, c.routes.AfterRegister, func() (*identity.AuthResponse, error) {
		return c.transport.Register(ctx, creds)
	})
}

// LoginWithGoogleIDToken signs in with an ID token Google issued to this
// application.
func (c *Controller) LoginWithGoogleIDToken(ctx context.Context, idToken string) bool {
	return c.authenticate(ctx, OpGoogleIDToken, MsgGoogleSignInFailed, c.routes.AfterLogin, func() (*identity.AuthResponse, error) {
		return c.transport.LoginWithGoogle(ctx, idToken)
	})
}

func (c *Controller) authenticate(ctx context.Context, op, message, target string, call func() (*identity.AuthResponse, error)) bool {
	c.state.SetLoading(true)
	c.state.ClearError()
	defer c.state.SetLoading(false)

	resp, err := call()
	if err != nil {
		c.fail(op, err)
		c.state.SetError(message)
		return false
	}

	c.state.SetSession(ctx, *resp)
	c.succeed(op)
	c.navigate(target)
	return true
}

// LoginWithGoogle sends the browser to the identity backend's Google
// authorization URL. The session is left untouched.
func (c *Controller) LoginWithGoogle() error {
	if c.nav == nil {
		c.metrics.AuthOperation(OpGoogle, metrics.OutcomeSkipped)
		return errors.ErrNoBrowsingContext
	}
	c.nav.RedirectExternal(c.transport.GoogleAuthURL())
	c.succeed(OpGoogle)
	return nil
}

// CompleteCallback finishes a backend-driven Google sign-in that handed the
// token pair back to the application.
func (c *Controller) CompleteCallback(ctx context.Context, accessToken, refreshToken string) bool {
	c.state.SetLoading(true)
	defer c.state.SetLoading(false)

	user, err := c.fetchCallbackUser(ctx, accessToken, refreshToken)
	if err != nil {
		c.fail(OpCallback, err)
		c.state.ClearSession(ctx)
		c.state.SetError(MsgGoogleSignInFailed)
		c.navigate(c.routes.Login)
		return false
	}

	c.state.SetSession(ctx, identity.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         *user,
	})
	c.succeed(OpCallback)
	c.navigate(c.routes.AfterLogin)
	return true
}

func (c *Controller) fetchCallbackUser(ctx context.Context, accessToken, refreshToken string) (*identity.User, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "callback without tokens")
	}
	return c.transport.FetchUser(ctx, accessToken)
}

// RefreshUserToken trades the refresh token for a new session. Without a
// refresh token it returns false and does nothing. When the exchange fails
// the user is logged out.
func (c *Controller) RefreshUserToken(ctx context.Context) bool {
	refreshToken := c.state.RefreshToken()
	if refreshToken == "" {
		c.metrics.AuthOperation(OpRefresh, metrics.OutcomeSkipped)
		return false
	}

	resp, err := c.transport.RefreshToken(ctx, refreshToken)
	if err != nil {
		c.fail(OpRefresh, err)
		c.Logout(ctx)
		return false
	}

	c.state.SetSession(ctx, *resp)
	c.succeed(OpRefresh)
	return true
}

// Logout clears the session and navigates to the login page.
func (c *Controller) Logout(ctx context.Context) {
	c.state.ClearSession(ctx)
	c.succeed(OpLogout)
	c.navigate(c.routes.Login)
}

// InitUser reconciles the session on page load:
//
//	access token, no user   -> fetch the user, refresh if that fails
//	access token and user   -> nothing
//	refresh token only      -> refresh
//	no tokens               -> nothing
func (c *Controller) InitUser(ctx context.Context) {
	if c.state.AccessToken() != "" && c.state.User() == nil {
		c.state.Hydrate(ctx)
	}

	switch {
	case c.state.AccessToken() != "" && c.state.User() == nil:
		c.state.SetLoading(true)
		defer c.state.SetLoading(false)

		user, err := c.transport.FetchUser(ctx, c.state.AccessToken())
		if err != nil {
			c.fail(OpInitUser, err)
			c.RefreshUserToken(ctx)
			return
		}
		c.state.SetUser(ctx, *user)
		c.succeed(OpInitUser)

	case c.state.AccessToken() == "" && c.state.RefreshToken() != "":
		c.RefreshUserToken(ctx)

	default:
		c.metrics.AuthOperation(OpInitUser, metrics.OutcomeSkipped)
	}
}

// SetSession installs a session obtained elsewhere, as by an OAuth callback.
func (c *Controller) SetSession(ctx context.Context, resp identity.AuthResponse) {
	c.state.SetSession(ctx, resp)
}

func (c *Controller) IsAuthenticated() bool {
	return c.state.IsAuthenticated()
}

// LastFailure returns the cause of the most recent failed operation, for
// logs and debugging only.
func (c *Controller) LastFailure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFailure
}

func (c *Controller) fail(op string, err error) {
	c.mu.Lock()
	c.lastFailure = err
	c.mu.Unlock()

	level := zerolog.WarnLevel
	if errors.Is(err, errors.ErrInvalidCredentials) || errors.Is(err, errors.ErrRegistrationConflict) || errors.Is(err, errors.ErrTokenExpired) {
		level = zerolog.DebugLevel
	}
	c.logger.WithLevel(level).Err(err).Str("operation", op).Msg("auth operation failed")
	c.metrics.AuthOperation(op, metrics.OutcomeFailure)
}

func (c *Controller) succeed(op string) {
	c.logger.Debug().Str("operation", op).Msg("auth operation succeeded")
	c.metrics.AuthOperation(op, metrics.OutcomeSuccess)
}

func (c *Controller) navigate(path string) {
	if c.nav == nil || path == "" {
		return
	}
	c.nav.NavigateTo(path)
}
