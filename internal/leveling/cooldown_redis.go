package leveling

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisGate is a cooldown gate backed by a shared Redis store. The check
// and the record are a single SET NX PX command, so two bot processes can
// never both grant XP to the same member inside one window.
type RedisGate struct {
	client rueidis.Client
}

// NewRedisGate creates a Redis-backed cooldown gate.
func NewRedisGate(client rueidis.Client) *RedisGate {
	return &RedisGate{client: client}
}

// TryConsume implements CooldownGate via SET NX with the window as expiry.
func (g *RedisGate) TryConsume(ctx context.Context, guildID, userID string, window time.Duration) (bool, error) {
	resp := g.client.Do(ctx, g.client.B().Set().
		Key(redisCooldownKey(guildID, userID)).
		Value("1").
		Nx().
		Px(window).
		Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			// SET NX returns nil when the key already exists
			return false, nil
		}

		return false, fmt.Errorf("failed to set cooldown key: %w", err)
	}

	return true, nil
}

// Release implements CooldownGate by deleting the key.
func (g *RedisGate) Release(ctx context.Context, guildID, userID string) error {
	err := g.client.Do(ctx, g.client.B().Del().
		Key(redisCooldownKey(guildID, userID)).
		Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to release cooldown key: %w", err)
	}

	return nil
}

func redisCooldownKey(guildID, userID string) string {
	return "cooldown:xp:" + guildID + ":" + userID
}
