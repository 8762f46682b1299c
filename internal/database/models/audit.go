package models

import (
	"context"
	"fmt"

	"github.com/Suhaib3100/quasar-2.0/internal/database/dbretry"
	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AuditModel handles database operations for progression audit logs.
type AuditModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAudit creates a new audit model instance.
func NewAudit(db *bun.DB, logger *zap.Logger) *AuditModel {
	return &AuditModel{
		db:     db,
		logger: logger.Named("db_audit"),
	}
}

// Log stores an administrative progression change. When a transaction is
// supplied the insert joins it so the audit row commits with the mutation.
func (m *AuditModel) Log(ctx context.Context, idb bun.IDB, log *types.ProgressionAuditLog) error {
	if idb == nil {
		idb = m.db
	}

	_, err := idb.NewInsert().Model(log).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to log progression change: %w", err)
	}

	m.logger.Debug("Logged progression change",
		zap.String("guildID", log.GuildID),
		zap.String("moderatorID", log.ModeratorID),
		zap.String("targetUserID", log.TargetUserID),
		zap.String("operation", string(log.Operation)))

	return nil
}

// GetByGuild retrieves recent audit entries for a guild, newest first.
func (m *AuditModel) GetByGuild(ctx context.Context, guildID string, limit int) ([]*types.ProgressionAuditLog, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ProgressionAuditLog, error) {
		var logs []*types.ProgressionAuditLog

		err := m.db.NewSelect().
			Model(&logs).
			Where("guild_id = ?", guildID).
			Order("created_at DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get audit logs: %w", err)
		}

		return logs, nil
	})
}
