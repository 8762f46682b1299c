package leveling_test

import (
	"testing"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/leveling"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisGate(t *testing.T) (*leveling.RedisGate, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return leveling.NewRedisGate(client), mr, cleanup
}

func TestRedisGateWindowEnforcement(t *testing.T) {
	t.Parallel()

	gate, mr, cleanup := setupRedisGate(t)
	defer cleanup()

	ctx := t.Context()
	window := time.Minute

	ok, err := gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.True(t, ok, "first consume should succeed")

	ok, err = gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.False(t, ok, "second consume inside the window should fail")

	// Expiry is enforced by Redis key TTL.
	mr.FastForward(window)

	ok, err = gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.True(t, ok, "consume after expiry should succeed")
}

func TestRedisGateKeysAreIndependent(t *testing.T) {
	t.Parallel()

	gate, _, cleanup := setupRedisGate(t)
	defer cleanup()

	ctx := t.Context()

	ok, err := gate.TryConsume(ctx, "guild1", "user1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = gate.TryConsume(ctx, "guild2", "user1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGateRelease(t *testing.T) {
	t.Parallel()

	gate, _, cleanup := setupRedisGate(t)
	defer cleanup()

	ctx := t.Context()

	ok, err := gate.TryConsume(ctx, "guild1", "user1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, gate.Release(ctx, "guild1", "user1"))

	ok, err = gate.TryConsume(ctx, "guild1", "user1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "release should re-arm the gate immediately")
}
