// Package googlesignin runs the OpenID Connect authorization code flow with
// Google directly from the BFF, yielding a verified ID token that the identity
// backend exchanges for a session.
package googlesignin

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

const (
	DefaultIssuer = "https://accounts.google.com"
	// StateTTL bounds how long a user may spend on the consent screen
	StateTTL = 10 * time.Minute
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Issuer       string
}

// Result of a completed sign-in
type Result struct {
	RawIDToken string
	Email      string
	ReturnURL  string
}

type SignIn struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
	states   StateStore
	nowFunc  func() time.Time
}

type Option func(*SignIn)

func WithStateStore(states StateStore) Option {
	return func(s *SignIn) {
		s.states = states
	}
}

func WithNowFunc(nowFunc func() time.Time) Option {
	return func(s *SignIn) {
		s.nowFunc = nowFunc
	}
}

// New discovers the provider at cfg.Issuer and prepares the flow.
func New(ctx context.Context, cfg Config, options ...Option) (*SignIn, error) {
	if cfg.ClientID == "" {
		return nil, errors.Wrapf(errors.ErrNotConfigured, "google client id")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create OIDC provider")
	}

	s := &SignIn{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.states == nil {
		s.states = NewMemoryStateStore(StateTTL, s.nowFunc)
	}
	s.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID, Now: s.nowFunc})
	return s, nil
}

// Begin starts a sign-in and returns the provider URL to send the browser to.
// returnURL must be an in-app path; anything else is dropped.
func (s *SignIn) Begin(returnURL string) (string, error) {
	state := uuid.NewString()
	flow := FlowState{
		CodeVerifier: oauth2.GenerateVerifier(),
		Nonce:        uuid.NewString(),
		ReturnURL:    localPath(returnURL),
		CreatedAt:    s.nowFunc(),
	}
	if err := s.states.Put(state, flow); err != nil {
		return "", err
	}

	return s.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(flow.CodeVerifier),
		oidc.Nonce(flow.Nonce),
	), nil
}

// Complete consumes state, exchanges code and verifies the ID token,
// including its nonce.
func (s *SignIn) Complete(ctx context.Context, state, code string) (*Result, error) {
	flow, err := s.states.Take(state)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "missing authorization code")
	}

	token, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return nil, errors.Wrapf(err, "token exchange failed")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "no id_token in token response")
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "id token verification failed: %v", err)
	}
	if idToken.Nonce != flow.Nonce {
		return nil, errors.ErrInvalidNonce
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "failed to extract claims: %v", err)
	}

	return &Result{RawIDToken: rawIDToken, Email: claims.Email, ReturnURL: flow.ReturnURL}, nil
}

func localPath(u string) string {
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.Contains(u, `\`) {
		return ""
	}
	return u
}
