// Package session holds the authenticated state of one browser session: the
// access and refresh tokens, persisted in an expiring key/value store, and the
// current user with transient loading/error flags.
package session

import (
	"net/http"
	"sync"
	"time"
)

// Store is a key/value store where each value carries its own expiry.
// Expired values are never returned.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	nowFunc func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		nowFunc: time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.nowFunc = now
	return m
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if e.expired(m.nowFunc()) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *MemoryStore) Set(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl <= 0 {
		delete(m.entries, key)
		return
	}
	m.entries[key] = entry{value: value, expiresAt: m.nowFunc().Add(ttl)}
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// CookieOptions are applied to every cookie a CookieStore writes
type CookieOptions struct {
	SameSite http.SameSite
	Secure   bool
	HTTPOnly bool
	Prefix   string // optional, keeps names apart when several apps share a domain
	Path     string
}

// CookieStore reads the cookies of one request and writes Set-Cookie headers
// on its response. Values written during the request are visible to later
// reads of the same request.
type CookieStore struct {
	mu      sync.Mutex
	r       *http.Request
	w       http.ResponseWriter
	opts    CookieOptions
	written map[string]*entry // nil entry marks a deletion
	nowFunc func() time.Time
}

var _ Store = (*CookieStore)(nil)

func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &CookieStore{
		r:       r,
		w:       w,
		opts:    opts,
		written: make(map[string]*entry),
		nowFunc: time.Now,
	}
}

func (c *CookieStore) name(key string) string {
	if c.opts.Prefix == "" {
		return key
	}
	return c.opts.Prefix + "_" + key
}

func (c *CookieStore) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.written[key]; ok {
		if e == nil || e.expired(c.nowFunc()) {
			return "", false
		}
		return e.value, true
	}

	// The browser drops expired cookies before sending them.
	cookie, err := c.r.Cookie(c.name(key))
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieStore) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 || value == "" {
		c.Delete(key)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.nowFunc().Add(ttl)
	c.written[key] = &entry{value: value, expiresAt: expiresAt}
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name(key),
		Value:    value,
		Path:     c.opts.Path,
		MaxAge:   int(ttl.Seconds()),
		Expires:  expiresAt.UTC(),
		Secure:   c.opts.Secure,
		HttpOnly: c.opts.HTTPOnly,
		SameSite: c.opts.SameSite,
	})
}

func (c *CookieStore) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.written[key] = nil
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name(key),
		Value:    "",
		Path:     c.opts.Path,
		MaxAge:   -1,
		Secure:   c.opts.Secure,
		HttpOnly: c.opts.HTTPOnly,
		SameSite: c.opts.SameSite,
	})
}
