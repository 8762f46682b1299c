package migrations

import (
	"context"
	"fmt"

	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.ProgressionRecord)(nil),
			(*types.RoleReward)(nil),
			(*types.ProgressionAuditLog)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table: %w", err)
			}
		}

		// Leaderboard queries order by (level, xp) within a guild
		_, err := db.NewRaw(`
			CREATE INDEX IF NOT EXISTS idx_progression_records_leaderboard
			ON progression_records (guild_id, level DESC, xp DESC, created_at ASC, user_id ASC);

			CREATE INDEX IF NOT EXISTS idx_progression_records_activity
			ON progression_records (guild_id, last_activity_at DESC);

			CREATE INDEX IF NOT EXISTS idx_progression_audit_logs_guild_time
			ON progression_audit_logs (guild_id, created_at DESC);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.ProgressionAuditLog)(nil),
			(*types.RoleReward)(nil),
			(*types.ProgressionRecord)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table: %w", err)
			}
		}

		return nil
	})
}
