// Package fakeidentity is an in-memory identity backend. It stands in for the
// real identity API in development and tests, either called directly through
// identity.Transport or served over HTTP by Handler.
package fakeidentity

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/internal/latency"
)

const (
	DemoEmail    = "test@demo.com"
	DemoPassword = "password"

	googleDemoEmail = "google-user@gmail.com"
	issuer          = "studio-tarjimon-fake-identity"
)

var _ identity.Transport = (*Service)(nil)

type Service struct {
	users              *userStore
	refresh            *refreshStore
	signer             *HMACSigner
	baseURL            string
	callbackURL        string
	latency            time.Duration
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type Option func(*Service)

// WithLatency delays every call, simulating a network round trip.
func WithLatency(d time.Duration) Option {
	return func(s *Service) {
		s.latency = d
	}
}

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) Option {
	return func(s *Service) {
		s.accessTokenExpiry = accessTokenExpiry
		s.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// WithBaseURL sets the URL Handler is served at; GoogleAuthURL is built from it.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithCallbackURL is where the simulated Google authorization redirects with
// a fresh token pair.
func WithCallbackURL(callbackURL string) Option {
	return func(s *Service) {
		s.callbackURL = callbackURL
	}
}

// New creates the backend seeded with the demo translator account.
func New(secret string, options ...Option) (*Service, error) {
	s := &Service{
		users:   newUserStore(),
		refresh: newRefreshStore(),
		signer:  NewHMACSigner(secret),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.accessTokenExpiry == 0 {
		s.accessTokenExpiry = 15 * time.Minute
	}
	if s.refreshTokenExpiry == 0 {
		s.refreshTokenExpiry = 7 * 24 * time.Hour
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}

	_, err := s.users.add(identity.User{
		ID:        "u1",
		Email:     DemoEmail,
		FirstName: "Olmos",
		LastName:  "Davronov",
		AvatarURL: "/avatar_male_default.png",
		Role:      identity.RoleTranslator,
	}, DemoPassword)
	if err != nil {
		return nil, errors.Wrapf(err, "[fakeidentity New] seed demo user")
	}
	return s, nil
}

func (s *Service) Login(ctx context.Context, credentials identity.LoginCredentials) (*identity.AuthResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	user, err := s.users.authenticate(credentials.Email, credentials.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) Register(ctx context.Context, credentials identity.RegisterCredentials) (*identity.AuthResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if credentials.Email == "" || credentials.Password == "" || credentials.FirstName == "" || credentials.LastName == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "missing registration fields")
	}

	user, err := s.users.add(identity.User{
		Email:     normaliseEmail(credentials.Email),
		FirstName: credentials.FirstName,
		LastName:  credentials.LastName,
		Role:      identity.RoleTranslator,
	}, credentials.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) FetchUser(ctx context.Context, accessToken string) (*identity.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	claims, err := s.signer.Parse(accessToken, s.nowFunc)
	if err != nil {
		return nil, err
	}
	sub, _ := claims["sub"].(string)
	rec, ok := s.users.byID(sub)
	if !ok {
		return nil, errors.ErrInvalidToken
	}
	user := rec.user
	return &user, nil
}

// RefreshToken rotates the refresh token: the presented one stops working.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*identity.AuthResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	stored, err := s.refresh.consume(refreshToken, s.nowFunc(), s.refreshTokenExpiry)
	if err != nil {
		return nil, err
	}
	rec, ok := s.users.byID(stored.UserID)
	if !ok {
		return nil, errors.ErrRefreshInvalid
	}
	return s.issue(rec.user)
}

// LoginWithGoogle trusts the claims of the presented ID token without
// verifying its signature; the caller is expected to have verified it.
// Unknown emails get a translator account.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*identity.AuthResponse, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "parse google id token")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "google id token has no email")
	}
	return s.googleSession(identity.User{
		Email:     email,
		FirstName: stringClaim(claims, "given_name", "Google"),
		LastName:  stringClaim(claims, "family_name", "User"),
		AvatarURL: stringClaim(claims, "picture", ""),
		Role:      identity.RoleTranslator,
	})
}

func (s *Service) GoogleAuthURL() string {
	return s.baseURL + identity.RouteGoogleAuthURL
}

func (s *Service) googleSession(profile identity.User) (*identity.AuthResponse, error) {
	if rec, ok := s.users.byEmail(profile.Email); ok {
		return s.issue(rec.user)
	}
	user, err := s.users.add(profile, "")
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// issue creates an access token and a rotated refresh token for the user
func (s *Service) issue(user identity.User) (*identity.AuthResponse, error) {
	now := s.nowFunc()
	accessToken, err := s.signer.Sign(jwt.MapClaims{
		"iss":   issuer,
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.accessTokenExpiry).Unix(),
		"jti":   uuid.New().String(),
	})
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refresh.create(user.ID, now)
	if err != nil {
		return nil, err
	}
	return &identity.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Revoke drops the user's refresh token, forcing a new login once the access
// token lapses.
func (s *Service) Revoke(userID string) {
	s.refresh.revokeUser(userID)
}

func (s *Service) wait(ctx context.Context) error {
	return latency.Wait(ctx, s.latency)
}

func stringClaim(claims jwt.MapClaims, key, fallback string) string {
	if v, ok := claims[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
