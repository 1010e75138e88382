package config_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	config.ResetFile()
	c := config.New()

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 15*time.Minute, c.GetAccessTokenMaxAge())
	require.Equal(t, 7*24*time.Hour, c.GetRefreshTokenMaxAge())
	require.Equal(t, http.SameSiteLaxMode, c.GetCookieSameSite())
	require.False(t, c.GetCookieHTTPOnly())
	require.Equal(t, config.IdentityModeHTTP, c.GetIdentityMode())
	require.Equal(t, "http://localhost:3000/auth/google/callback", c.GetGoogleRedirectURL())
}

func TestEnvOverrides(t *testing.T) {
	config.ResetFile()
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_MAX_AGE", "5m")
	t.Setenv("COOKIE_SAME_SITE", "strict")
	t.Setenv("COOKIE_HTTP_ONLY", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 5*time.Minute, c.GetAccessTokenMaxAge())
	require.Equal(t, http.SameSiteStrictMode, c.GetCookieSameSite())
	require.True(t, c.GetCookieHTTPOnly())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.example.com"))
}

func TestInvalidDurationFallsBack(t *testing.T) {
	config.ResetFile()
	t.Setenv("REFRESH_TOKEN_MAX_AGE", "a week")

	require.Equal(t, 7*24*time.Hour, config.New().GetRefreshTokenMaxAge())
}

func TestLoadFile(t *testing.T) {
	t.Cleanup(config.ResetFile)
	dir := t.TempDir()

	t.Run("missing file keeps defaults", func(t *testing.T) {
		c, err := config.Load(filepath.Join(dir, "missing.yaml"))
		require.NoError(t, err)
		require.Equal(t, "Studio Tarjimon", c.GetAppName())
	})

	t.Run("file values apply below env", func(t *testing.T) {
		path := filepath.Join(dir, "studio.yaml")
		require.NoError(t, os.WriteFile(path, []byte("APP_NAME: Tarjimon Dev\nIDENTITY_MODE: fake\nPORT: \"4000\"\n"), 0o600))
		t.Setenv("PORT", "5000")

		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "Tarjimon Dev", c.GetAppName())
		require.Equal(t, config.IdentityModeFake, c.GetIdentityMode())
		require.Equal(t, ":5000", c.GetPort())
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

		_, err := config.Load(path)
		require.Error(t, err)
	})
}
