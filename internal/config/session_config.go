package config

import (
	"net/http"
	"strings"
	"time"
)

type SessionConfig interface {
	GetAccessTokenMaxAge() time.Duration
	GetRefreshTokenMaxAge() time.Duration
	GetCookieSameSite() http.SameSite
	GetCookieSecure() bool
	GetCookieHTTPOnly() bool
	GetCookiePrefix() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetAccessTokenMaxAge() time.Duration {
	return GetDuration("ACCESS_TOKEN_MAX_AGE", 15*time.Minute)
}

func (Session) GetRefreshTokenMaxAge() time.Duration {
	return GetDuration("REFRESH_TOKEN_MAX_AGE", 7*24*time.Hour)
}

func (Session) GetCookieSameSite() http.SameSite {
	switch strings.ToLower(GetEnv("COOKIE_SAME_SITE", "lax")) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (Session) GetCookieSecure() bool {
	return GetBool("COOKIE_SECURE", false)
}

// GetCookieHTTPOnly is off by default; client script reads the token cookies.
func (Session) GetCookieHTTPOnly() bool {
	return GetBool("COOKIE_HTTP_ONLY", false)
}

func (Session) GetCookiePrefix() string {
	return GetEnv("COOKIE_PREFIX", "")
}
