package googlesignin_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/OlmosJT/studio-tarjimon-io/googlesignin"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
)

func TestMemoryStateStore_TakeConsumes(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := googlesignin.NewMemoryStateStore(googlesignin.StateTTL, func() time.Time { return now })

	require.NoError(t, store.Put("s1", googlesignin.FlowState{Nonce: "n", CreatedAt: now}))

	flow, err := store.Take("s1")
	require.NoError(t, err)
	require.Equal(t, "n", flow.Nonce)

	_, err = store.Take("s1")
	require.ErrorIs(t, err, errors.ErrInvalidState)
}

func TestMemoryStateStore_Expires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := googlesignin.NewMemoryStateStore(googlesignin.StateTTL, clock)

	require.NoError(t, store.Put("old", googlesignin.FlowState{CreatedAt: now}))
	now = now.Add(googlesignin.StateTTL)

	_, err := store.Take("old")
	require.ErrorIs(t, err, errors.ErrInvalidState)
}

func TestMemoryStateStore_PutPurgesAbandoned(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := googlesignin.NewMemoryStateStore(time.Minute, func() time.Time { return now })

	require.NoError(t, store.Put("a", googlesignin.FlowState{CreatedAt: now}))
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Put("b", googlesignin.FlowState{CreatedAt: now}))

	require.Equal(t, 1, store.Len())
	require.ErrorIs(t, store.Put("", googlesignin.FlowState{}), errors.ErrInvalidState)
}
