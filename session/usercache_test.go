package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/session"
)

func TestMemoryUserCache_SetGetDelete(t *testing.T) {
	cache := session.NewMemoryUserCache(0)
	defer cache.Close()
	ctx := context.Background()

	_, err := cache.Get(ctx, "tok")
	require.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, cache.Set(ctx, "tok", demoUser(), time.Minute))
	user, err := cache.Get(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, demoUser(), *user)

	require.NoError(t, cache.Delete(ctx, "tok"))
	_, err = cache.Get(ctx, "tok")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemoryUserCache_CleanupSweepsExpired(t *testing.T) {
	cache := session.NewMemoryUserCache(10 * time.Millisecond)
	defer cache.Close()

	require.NoError(t, cache.Set(context.Background(), "tok", demoUser(), time.Millisecond))

	require.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCacheKey_HidesToken(t *testing.T) {
	key := session.CacheKey("secret-token")
	require.Len(t, key, 64)
	require.NotContains(t, key, "secret")
	require.Equal(t, key, session.CacheKey("secret-token"))
}
