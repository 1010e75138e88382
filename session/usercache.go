package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

// UserCache shares the current user across requests of the same browser
// session, keyed by access token. A miss returns errors.ErrNotFound.
type UserCache interface {
	Get(ctx context.Context, accessToken string) (*identity.User, error)
	Set(ctx context.Context, accessToken string, user identity.User, ttl time.Duration) error
	Delete(ctx context.Context, accessToken string) error
}

// CacheKey derives the cache key of an access token so raw tokens are never
// used as keys.
func CacheKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}

type cachedUser struct {
	user      identity.User
	expiresAt time.Time
}

// MemoryUserCache is a UserCache for a single process
type MemoryUserCache struct {
	mu       sync.RWMutex
	users    map[string]cachedUser
	nowFunc  func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ UserCache = (*MemoryUserCache)(nil)

// NewMemoryUserCache creates the cache. A positive cleanupInterval starts a
// goroutine that sweeps expired entries until Close is called.
func NewMemoryUserCache(cleanupInterval time.Duration) *MemoryUserCache {
	c := &MemoryUserCache{
		users:    make(map[string]cachedUser),
		nowFunc:  time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanUp(cleanupInterval)
	}
	return c
}

// WithClock replaces the time source, for tests.
func (c *MemoryUserCache) WithClock(now func() time.Time) *MemoryUserCache {
	c.nowFunc = now
	return c
}

func (c *MemoryUserCache) Get(_ context.Context, accessToken string) (*identity.User, error) {
	c.mu.RLock()
	cu, ok := c.users[CacheKey(accessToken)]
	c.mu.RUnlock()

	if !ok || !c.nowFunc().Before(cu.expiresAt) {
		return nil, errors.ErrNotFound
	}
	user := cu.user
	return &user, nil
}

func (c *MemoryUserCache) Set(_ context.Context, accessToken string, user identity.User, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[CacheKey(accessToken)] = cachedUser{user: user, expiresAt: c.nowFunc().Add(ttl)}
	return nil
}

func (c *MemoryUserCache) Delete(_ context.Context, accessToken string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, CacheKey(accessToken))
	return nil
}

// Len returns the number of entries, expired ones included
func (c *MemoryUserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}

func (c *MemoryUserCache) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *MemoryUserCache) cleanUp(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryUserCache) sweep() {
	now := c.nowFunc()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, cu := range c.users {
		if !now.Before(cu.expiresAt) {
			delete(c.users, k)
		}
	}
}
