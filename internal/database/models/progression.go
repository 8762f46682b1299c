package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/dbretry"
	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling/curve"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ProgressionModel handles database operations for member progression records.
type ProgressionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewProgression creates a new progression model instance.
func NewProgression(db *bun.DB, logger *zap.Logger) *ProgressionModel {
	return &ProgressionModel{
		db:     db,
		logger: logger.Named("db_progression"),
	}
}

// IncrementXP atomically adds XP to a member's record and returns the
// post-increment row. The row is created with zero defaults if absent. The
// stored level is derived from the post-increment XP inside the same
// statement, so concurrent grants can never compute a level from a stale
// XP snapshot.
func (m *ProgressionModel) IncrementXP(
	ctx context.Context, guildID, userID string, amount int64,
) (*types.ProgressionRecord, error) {
	if amount < 0 {
		return nil, types.ErrNegativeValue
	}

	now := time.Now()
	record := &types.ProgressionRecord{
		GuildID:        guildID,
		UserID:         userID,
		XP:             amount,
		Level:          curve.LevelFor(amount),
		MessageCount:   1,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ProgressionRecord, error) {
		_, err := m.db.NewInsert().
			Model(record).
			On("CONFLICT (guild_id, user_id) DO UPDATE").
			Set("xp = progression_record.xp + EXCLUDED.xp").
			Set("level = "+curve.LevelSQL("progression_record.xp + EXCLUDED.xp")).
			Set("message_count = progression_record.message_count + 1").
			Set("last_activity_at = EXCLUDED.last_activity_at").
			Set("updated_at = EXCLUDED.updated_at").
			Returning("*").
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to increment xp: %w", err)
		}

		return record, nil
	})
}

// Get retrieves a member's progression record.
func (m *ProgressionModel) Get(ctx context.Context, guildID, userID string) (*types.ProgressionRecord, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ProgressionRecord, error) {
		record := new(types.ProgressionRecord)

		err := m.db.NewSelect().
			Model(record).
			Where("guild_id = ?", guildID).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrProgressionNotFound
			}

			return nil, fmt.Errorf("failed to get progression record: %w", err)
		}

		return record, nil
	})
}

// GetOrCreate retrieves a member's progression record, lazily creating a
// zeroed row on first touch.
func (m *ProgressionModel) GetOrCreate(ctx context.Context, guildID, userID string) (*types.ProgressionRecord, error) {
	record := types.NewProgressionRecord(guildID, userID)

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(record).
			On("CONFLICT (guild_id, user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create progression record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return m.Get(ctx, guildID, userID)
}

// LeaderboardPage retrieves one page of a guild's ranking, ordered by level
// then XP descending. Ties break by creation time then user ID so repeated
// queries return a stable order.
func (m *ProgressionModel) LeaderboardPage(
	ctx context.Context, guildID string, page, pageSize int,
) ([]*types.ProgressionRecord, error) {
	if page < 1 || pageSize < 1 {
		return nil, types.ErrNegativeValue
	}

	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ProgressionRecord, error) {
		var records []*types.ProgressionRecord

		err := m.db.NewSelect().
			Model(&records).
			Where("guild_id = ?", guildID).
			Order("level DESC", "xp DESC", "created_at ASC", "user_id ASC").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get leaderboard page: %w", err)
		}

		return records, nil
	})
}

// Rank computes a member's 1-based position within the guild: one plus the
// number of members with a strictly better (level, xp) pair.
func (m *ProgressionModel) Rank(ctx context.Context, guildID, userID string) (int64, error) {
	record, err := m.Get(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}

	return dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		count, err := m.db.NewSelect().
			Model((*types.ProgressionRecord)(nil)).
			Where("guild_id = ?", guildID).
			Where("(level > ?) OR (level = ? AND xp > ?)", record.Level, record.Level, record.XP).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to compute rank: %w", err)
		}

		return int64(count) + 1, nil
	})
}

// CountActiveSince returns how many guild members earned XP after the given time.
func (m *ProgressionModel) CountActiveSince(ctx context.Context, guildID string, since time.Time) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := m.db.NewSelect().
			Model((*types.ProgressionRecord)(nil)).
			Where("guild_id = ?", guildID).
			Where("last_activity_at >= ?", since).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count active members: %w", err)
		}

		return count, nil
	})
}
