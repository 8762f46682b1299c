package leveling

import (
	"context"
	"sync"
	"time"
)

// CooldownGate decides whether an activity event is eligible to grant XP.
// Implementations must be atomic per (guild, user) key: of two concurrent
// TryConsume calls inside one window, exactly one may succeed.
type CooldownGate interface {
	// TryConsume records "now" as the last grant time and returns true if
	// the key has no entry or the entry is older than window. Returns false
	// with no state change otherwise.
	TryConsume(ctx context.Context, guildID, userID string, window time.Duration) (bool, error)

	// Release removes the key's entry so the member can retry immediately.
	// Used to re-arm the gate when a grant fails after consumption.
	Release(ctx context.Context, guildID, userID string) error
}

// pruneThreshold bounds the entry map before expired keys are swept.
const pruneThreshold = 4096

// MemoryGate is a process-local cooldown gate. State lives only in this
// process; losing it on restart relaxes rate limiting but never corrupts
// XP. Use RedisGate when running multiple bot processes.
type MemoryGate struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   func() time.Time
}

// NewMemoryGate creates an in-process cooldown gate. A nil clock defaults
// to time.Now; tests inject a fake.
func NewMemoryGate(clock func() time.Time) *MemoryGate {
	if clock == nil {
		clock = time.Now
	}

	return &MemoryGate{
		entries: make(map[string]time.Time),
		clock:   clock,
	}
}

// TryConsume implements CooldownGate. Never returns an error.
func (g *MemoryGate) TryConsume(_ context.Context, guildID, userID string, window time.Duration) (bool, error) {
	now := g.clock()
	key := cooldownKey(guildID, userID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.entries[key]; ok && now.Sub(last) < window {
		return false, nil
	}

	if len(g.entries) >= pruneThreshold {
		g.prune(now, window)
	}

	g.entries[key] = now

	return true, nil
}

// Release implements CooldownGate. Never returns an error.
func (g *MemoryGate) Release(_ context.Context, guildID, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.entries, cooldownKey(guildID, userID))

	return nil
}

// prune drops entries older than the window. Caller holds the lock.
func (g *MemoryGate) prune(now time.Time, window time.Duration) {
	for key, last := range g.entries {
		if now.Sub(last) >= window {
			delete(g.entries, key)
		}
	}
}

func cooldownKey(guildID, userID string) string {
	return guildID + ":" + userID
}
