package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

// Store keys of the two tokens
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

const (
	DefaultAccessTokenLifetime  = 15 * time.Minute
	DefaultRefreshTokenLifetime = 7 * 24 * time.Hour
)

// State is the session of one browser context. Tokens live in the Store with
// their own expiry; user, loading and error live in the State itself, with the
// user optionally shared through a UserCache.
//
// Every mutation is a single assignment under the mutex; concurrent writers
// get last-write-wins.
type State struct {
	mu              sync.RWMutex
	store           Store
	users           UserCache
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	userCacheTTL    time.Duration

	user    *identity.User
	loading bool
	errMsg  *string
}

type StateOption func(*State)

// WithLifetimes overrides the token lifetimes (15 minutes and 7 days).
func WithLifetimes(access, refresh time.Duration) StateOption {
	return func(s *State) {
		s.accessLifetime = access
		s.refreshLifetime = refresh
	}
}

// WithUserCache shares the user across requests. ttl is capped at the access
// token lifetime.
func WithUserCache(cache UserCache, ttl time.Duration) StateOption {
	return func(s *State) {
		s.users = cache
		s.userCacheTTL = ttl
	}
}

func NewState(store Store, options ...StateOption) *State {
	s := &State{
		store:           store,
		accessLifetime:  DefaultAccessTokenLifetime,
		refreshLifetime: DefaultRefreshTokenLifetime,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.userCacheTTL <= 0 || s.userCacheTTL > s.accessLifetime {
		s.userCacheTTL = s.accessLifetime
	}
	return s
}

// Hydrate restores the user of the current access token from the user cache.
// Without a cache, a token or a cached entry it leaves the state untouched.
func (s *State) Hydrate(ctx context.Context) {
	if s.users == nil {
		return
	}
	accessToken := s.AccessToken()
	if accessToken == "" {
		return
	}
	user, err := s.users.Get(ctx, accessToken)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			log.Warn().Err(err).Msg("user cache lookup failed")
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		s.user = user
	}
}

// SetSession overwrites both tokens and the user and clears the error.
// Token shape is not validated.
func (s *State) SetSession(ctx context.Context, resp identity.AuthResponse) {
	s.mu.Lock()
	previous, _ := s.store.Get(AccessTokenKey)
	s.store.Set(AccessTokenKey, resp.AccessToken, s.accessLifetime)
	s.store.Set(RefreshTokenKey, resp.RefreshToken, s.refreshLifetime)
	user := resp.User
	s.user = &user
	s.errMsg = nil
	s.mu.Unlock()

	if previous != "" && previous != resp.AccessToken {
		s.forget(ctx, previous)
	}
	s.remember(ctx, resp.AccessToken, user)
}

// ClearSession removes both tokens and the user. The error is left as is.
func (s *State) ClearSession(ctx context.Context) {
	s.mu.Lock()
	previous, _ := s.store.Get(AccessTokenKey)
	s.store.Delete(AccessTokenKey)
	s.store.Delete(RefreshTokenKey)
	s.user = nil
	s.mu.Unlock()

	if previous != "" {
		s.forget(ctx, previous)
	}
}

// SetUser replaces the user, as after fetching it with the current access token.
func (s *State) SetUser(ctx context.Context, user identity.User) {
	s.mu.Lock()
	s.user = &user
	accessToken, _ := s.store.Get(AccessTokenKey)
	s.mu.Unlock()

	if accessToken != "" {
		s.remember(ctx, accessToken, user)
	}
}

func (s *State) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.store.Get(AccessTokenKey)
	return v
}

func (s *State) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, _ := s.store.Get(RefreshTokenKey)
	return v
}

// User returns a copy of the current user, or nil.
func (s *State) User() *identity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// ErrorMessage returns the user-facing error, "" when there is none.
func (s *State) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.errMsg == nil {
		return ""
	}
	return *s.errMsg
}

func (s *State) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = &message
}

func (s *State) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = nil
}

// Snapshot is the UI-facing view of the state. Tokens are not part of it.
type Snapshot struct {
	Authenticated bool           `json:"authenticated"`
	User          *identity.User `json:"user"`
	Loading       bool           `json:"loading"`
	Error         *string        `json:"error"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Authenticated: s.user != nil, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.errMsg != nil {
		msg := *s.errMsg
		snap.Error = &msg
	}
	return snap
}

func (s *State) remember(ctx context.Context, accessToken string, user identity.User) {
	if s.users == nil || accessToken == "" {
		return
	}
	if err := s.users.Set(ctx, accessToken, user, s.userCacheTTL); err != nil {
		log.Warn().Err(err).Msg("user cache write failed")
	}
}

func (s *State) forget(ctx context.Context, accessToken string) {
	if s.users == nil {
		return
	}
	if err := s.users.Delete(ctx, accessToken); err != nil {
		log.Warn().Err(err).Msg("user cache delete failed")
	}
}
