package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/dbretry"
	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// RoleRewardModel handles database operations for guild reward tiers.
type RoleRewardModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRoleReward creates a new role reward model instance.
func NewRoleReward(db *bun.DB, logger *zap.Logger) *RoleRewardModel {
	return &RoleRewardModel{
		db:     db,
		logger: logger.Named("db_role_reward"),
	}
}

// Upsert creates or updates a reward tier for a guild role.
func (m *RoleRewardModel) Upsert(ctx context.Context, reward *types.RoleReward) error {
	if err := reward.Validate(); err != nil {
		return err
	}

	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now()
	}

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(reward).
			On("CONFLICT (guild_id, role_id) DO UPDATE").
			Set("display_name = EXCLUDED.display_name").
			Set("required_level = EXCLUDED.required_level").
			Set("tier_order = EXCLUDED.tier_order").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert role reward: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Upserted role reward",
		zap.String("guildID", reward.GuildID),
		zap.String("roleID", reward.RoleID),
		zap.Int64("requiredLevel", reward.RequiredLevel),
		zap.Int("tierOrder", reward.TierOrder))

	return nil
}

// Remove deletes a reward tier.
func (m *RoleRewardModel) Remove(ctx context.Context, guildID, roleID string) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := m.db.NewDelete().
			Model((*types.RoleReward)(nil)).
			Where("guild_id = ?", guildID).
			Where("role_id = ?", roleID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to remove role reward: %w", err)
		}

		affected, err := result.RowsAffected()
		if err == nil && affected == 0 {
			return types.ErrRewardNotFound
		}

		return nil
	})
}

// ListByGuild retrieves a guild's reward tiers ordered by descending level
// threshold, ties by ascending tier order. This is the resolution order used
// to pick the single role a member should hold.
func (m *RoleRewardModel) ListByGuild(ctx context.Context, guildID string) ([]*types.RoleReward, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.RoleReward, error) {
		var rewards []*types.RoleReward

		err := m.db.NewSelect().
			Model(&rewards).
			Where("guild_id = ?", guildID).
			Order("required_level DESC", "tier_order ASC").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to list role rewards: %w", err)
		}

		return rewards, nil
	})
}
