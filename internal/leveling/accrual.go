package leveling

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling/curve"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// GrantResult reports the outcome of an attempted XP grant.
type GrantResult struct {
	Granted   bool
	NewXP     int64
	NewLevel  int64
	LeveledUp bool
}

// AccrualConfig holds the tunable parameters of XP accrual.
type AccrualConfig struct {
	// BaseAmount is the minimum XP granted per qualifying message.
	BaseAmount int64
	// JitterRange adds a uniform random amount in [0, JitterRange).
	JitterRange int64
	// Cooldown is the minimum time between two grants to the same member.
	Cooldown time.Duration
	// SyncTimeout bounds the role sync triggered by a level-up.
	SyncTimeout time.Duration
}

// ProgressionStore is the persistence surface accrual needs: one atomic
// increment returning the post-grant record.
type ProgressionStore interface {
	IncrementXP(ctx context.Context, guildID, userID string, amount int64) (*types.ProgressionRecord, error)
}

// Accrual orchestrates the cooldown gate, progression store, and role
// syncer for each qualifying activity event.
type Accrual struct {
	gate   CooldownGate
	store  ProgressionStore
	syncer *Syncer
	config AccrualConfig
	jitter func(int64) int64
	logger *zap.Logger
	syncs  conc.WaitGroup
}

// NewAccrual creates the XP accrual service.
func NewAccrual(
	gate CooldownGate,
	store ProgressionStore,
	syncer *Syncer,
	config AccrualConfig,
	logger *zap.Logger,
) *Accrual {
	return &Accrual{
		gate:   gate,
		store:  store,
		syncer: syncer,
		config: config,
		jitter: rand.Int64N,
		logger: logger.Named("xp_accrual"),
	}
}

// Grant attempts to award XP for one activity event. Returns a zero result
// when the member is still on cooldown. A storage failure re-arms the gate
// so the member's next message can retry naturally.
//
// Level-up side effects (notification, role sync) run after the record is
// persisted and can never roll it back.
func (a *Accrual) Grant(ctx context.Context, guildID, userID string) (GrantResult, error) {
	eligible, err := a.gate.TryConsume(ctx, guildID, userID, a.config.Cooldown)
	if err != nil {
		// A broken gate only relaxes rate limiting; XP stays correct
		a.logger.Warn("Cooldown gate unavailable, granting anyway",
			zap.Error(err),
			zap.String("guildID", guildID),
			zap.String("userID", userID))

		eligible = true
	}

	if !eligible {
		return GrantResult{}, nil
	}

	amount := a.config.BaseAmount
	if a.config.JitterRange > 0 {
		amount += a.jitter(a.config.JitterRange)
	}

	record, err := a.store.IncrementXP(ctx, guildID, userID, amount)
	if err != nil {
		if releaseErr := a.gate.Release(ctx, guildID, userID); releaseErr != nil {
			a.logger.Warn("Failed to re-arm cooldown gate", zap.Error(releaseErr))
		}

		return GrantResult{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	// The record's level was derived from the post-increment XP in the
	// same statement; the level before this grant is recovered from the
	// pre-increment XP, so each level crossing is seen by exactly one
	// concurrent grant.
	previousLevel := curve.LevelFor(record.XP - amount)
	result := GrantResult{
		Granted:   true,
		NewXP:     record.XP,
		NewLevel:  record.Level,
		LeveledUp: record.Level > previousLevel,
	}

	if result.LeveledUp {
		a.logger.Info("Member leveled up",
			zap.String("guildID", guildID),
			zap.String("userID", userID),
			zap.Int64("newLevel", record.Level),
			zap.Int64("newXP", record.XP))

		a.syncRoles(ctx, guildID, userID, record.Level)
	}

	return result, nil
}

// syncRoles launches the role sync in the background with its own
// deadline, detached from the triggering event's cancellation.
func (a *Accrual) syncRoles(ctx context.Context, guildID, userID string, level int64) {
	if a.syncer == nil {
		return
	}

	syncCtx := context.WithoutCancel(ctx)

	a.syncs.Go(func() {
		if err := a.syncer.Sync(syncCtx, guildID, userID, level); err != nil {
			a.logger.Warn("Role sync failed, roles remain out of sync until next level up",
				zap.Error(err),
				zap.String("guildID", guildID),
				zap.String("userID", userID),
				zap.Int64("level", level))
		}
	})
}

// Wait blocks until all in-flight role syncs complete. Called on shutdown.
func (a *Accrual) Wait() {
	a.syncs.Wait()
}
