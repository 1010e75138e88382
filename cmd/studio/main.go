package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/comments"
	"github.com/OlmosJT/studio-tarjimon-io/followers"
	"github.com/OlmosJT/studio-tarjimon-io/googlesignin"
	"github.com/OlmosJT/studio-tarjimon-io/identity/fakeidentity"
	"github.com/OlmosJT/studio-tarjimon-io/identity/httptransport"
	"github.com/OlmosJT/studio-tarjimon-io/internal/config"
	"github.com/OlmosJT/studio-tarjimon-io/internal/metrics"
	"github.com/OlmosJT/studio-tarjimon-io/profiles"
	"github.com/OlmosJT/studio-tarjimon-io/projects"
	"github.com/OlmosJT/studio-tarjimon-io/server"
	"github.com/OlmosJT/studio-tarjimon-io/session"
	"github.com/OlmosJT/studio-tarjimon-io/session/rediscache"
)

// identityMount is where the in-process identity backend is served in fake mode
const identityMount = "/identity/"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, cleanup, err := buildDeps(ctx, c)
	if err != nil {
		return err
	}
	defer cleanup()

	handler, err := server.New(c, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv)
	}()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

// buildDeps wires the identity transport, user cache, Google sign-in and the
// dashboard repositories from the configuration.
func buildDeps(ctx context.Context, c config.Config) (server.Deps, func(), error) {
	cleanup := func() {}
	deps := server.Deps{Metrics: metrics.New()}

	switch mode := c.GetIdentityMode(); mode {
	case config.IdentityModeFake:
		base := strings.TrimSuffix(c.GetBaseURL(), "/") + strings.TrimSuffix(identityMount, "/")
		idp, err := fakeidentity.New(c.GetFakeIdentitySecret(),
			fakeidentity.WithLatency(c.GetFakeIdentityLatency()),
			fakeidentity.WithTokenExpiry(c.GetAccessTokenMaxAge(), c.GetRefreshTokenMaxAge()),
			fakeidentity.WithBaseURL(base),
			fakeidentity.WithCallbackURL(strings.TrimSuffix(c.GetBaseURL(), "/")+server.RouteAuthCallback),
		)
		if err != nil {
			return deps, cleanup, err
		}
		deps.Transport = idp
		deps.Mounts = map[string]http.Handler{identityMount: idp.Handler()}
		log.Warn().Str("mount", identityMount).Msg("Using the in-process identity backend")
	case config.IdentityModeHTTP:
		deps.Transport = httptransport.New(c.GetIdentityBaseURL(), httptransport.WithTimeout(c.GetIdentityTimeout()))
		log.Info().Str("url", c.GetIdentityBaseURL()).Msg("Using identity API")
	default:
		return deps, cleanup, fmt.Errorf("unknown IDENTITY_MODE %q", mode)
	}

	if url := c.GetRedisURL(); url != "" {
		rdb, err := rediscache.Dial(ctx, url)
		if err != nil {
			return deps, cleanup, err
		}
		deps.UserCache = rediscache.New(rdb)
		cleanup = func() { _ = rdb.Close() }
		log.Info().Msg("User cache backed by redis")
	} else {
		memory := session.NewMemoryUserCache(time.Minute)
		deps.UserCache = memory
		cleanup = memory.Close
	}

	if clientID := c.GetGoogleClientID(); clientID != "" {
		google, err := googlesignin.New(ctx, googlesignin.Config{
			ClientID:     clientID,
			ClientSecret: c.GetGoogleClientSecret(),
			RedirectURL:  c.GetGoogleRedirectURL(),
			Issuer:       c.GetGoogleIssuer(),
		})
		if err != nil {
			cleanup()
			return deps, func() {}, err
		}
		deps.Google = google
	}

	latency := c.GetDataLatency()
	profileRepo, err := profiles.NewInMemoryRepo(profiles.WithLatency(latency))
	if err != nil {
		cleanup()
		return deps, func() {}, err
	}
	deps.Projects = projects.NewInMemoryRepo(projects.WithLatency(latency))
	deps.Comments = comments.NewInMemoryRepo(comments.WithLatency(latency))
	deps.Followers = followers.NewInMemoryRepo(latency)
	deps.Profiles = profileRepo

	return deps, cleanup, nil
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
