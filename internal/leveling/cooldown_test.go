package leveling_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/leveling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for cooldown tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestMemoryGateWindowEnforcement(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	gate := leveling.NewMemoryGate(clock.Now)
	ctx := t.Context()
	window := time.Minute

	ok, err := gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.True(t, ok, "first consume should succeed")

	ok, err = gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.False(t, ok, "second consume inside the window should fail")

	clock.Advance(59 * time.Second)

	ok, err = gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.False(t, ok, "consume just before expiry should fail")

	clock.Advance(time.Second)

	ok, err = gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.True(t, ok, "consume at expiry should succeed")
}

func TestMemoryGateKeysAreIndependent(t *testing.T) {
	t.Parallel()

	gate := leveling.NewMemoryGate(newFakeClock().Now)
	ctx := t.Context()
	window := time.Minute

	ok, err := gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	require.True(t, ok)

	// Same user in a different guild, different user in the same guild.
	ok, err = gate.TryConsume(ctx, "guild2", "user1", window)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.TryConsume(ctx, "guild1", "user2", window)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGateRelease(t *testing.T) {
	t.Parallel()

	gate := leveling.NewMemoryGate(newFakeClock().Now)
	ctx := t.Context()
	window := time.Minute

	ok, err := gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, gate.Release(ctx, "guild1", "user1"))

	ok, err = gate.TryConsume(ctx, "guild1", "user1", window)
	require.NoError(t, err)
	assert.True(t, ok, "release should re-arm the gate immediately")
}

// Of many concurrent consumes on one key, exactly one may win.
func TestMemoryGateConcurrentConsume(t *testing.T) {
	t.Parallel()

	gate := leveling.NewMemoryGate(nil)
	ctx := t.Context()

	var (
		wins int64
		wg   sync.WaitGroup
	)

	for range 64 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ok, err := gate.TryConsume(ctx, "guild1", "user1", time.Minute)
			require.NoError(t, err)

			if ok {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, int64(1), wins)
}
