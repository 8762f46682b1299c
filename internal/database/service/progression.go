package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/dbretry"
	"github.com/Suhaib3100/quasar-2.0/internal/database/models"
	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling/curve"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AdminChange describes an administrative progression mutation.
type AdminChange struct {
	GuildID      string
	ModeratorID  string
	TargetUserID string
	Operation    types.AuditOperation
	Amount       int64
	Reason       string
}

// ProgressionService handles progression business logic that spans the
// progression and audit models.
type ProgressionService struct {
	db     *bun.DB
	model  *models.ProgressionModel
	audit  *models.AuditModel
	logger *zap.Logger
}

// NewProgression creates a new progression service.
func NewProgression(
	db *bun.DB,
	model *models.ProgressionModel,
	audit *models.AuditModel,
	logger *zap.Logger,
) *ProgressionService {
	return &ProgressionService{
		db:     db,
		model:  model,
		audit:  audit,
		logger: logger.Named("progression_service"),
	}
}

// Apply performs an administrative mutation and writes its audit row in a
// single transaction. The target row is locked for the duration so the
// change cannot interleave with a concurrent XP grant. Returns the record
// as it stands after the change.
//
// SetLevel pins XP to the minimum required for the new level so the record
// stays plausible under the progression curve. SetXP and AdjustXP are
// XP-only and re-derive the level. Reset zeroes all counters but keeps the
// row.
func (s *ProgressionService) Apply(ctx context.Context, change *AdminChange) (*types.ProgressionRecord, error) {
	if change.Operation != types.AuditOperationAdjustXP && change.Amount < 0 {
		return nil, types.ErrNegativeValue
	}

	var result *types.ProgressionRecord

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.lockRecord(ctx, tx, change.GuildID, change.TargetUserID)
		if err != nil {
			return err
		}

		oldLevel, oldXP := record.Level, record.XP

		switch change.Operation {
		case types.AuditOperationSetLevel:
			record.Level = change.Amount
			record.XP = curve.XPRequiredForLevel(change.Amount)
		case types.AuditOperationSetXP:
			record.XP = change.Amount
			record.Level = curve.LevelFor(change.Amount)
		case types.AuditOperationAdjustXP:
			record.XP = max(0, record.XP+change.Amount)
			record.Level = curve.LevelFor(record.XP)
		case types.AuditOperationReset:
			record.XP = 0
			record.Level = 0
			record.MessageCount = 0
			record.LastActivityAt = time.Time{}
		default:
			return fmt.Errorf("unknown operation %q", change.Operation)
		}

		record.UpdatedAt = time.Now()

		_, err = tx.NewUpdate().
			Model(record).
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update progression record: %w", err)
		}

		err = s.audit.Log(ctx, tx, &types.ProgressionAuditLog{
			ID:           uuid.New(),
			GuildID:      change.GuildID,
			ModeratorID:  change.ModeratorID,
			TargetUserID: change.TargetUserID,
			Operation:    change.Operation,
			Amount:       change.Amount,
			Reason:       change.Reason,
			OldLevel:     oldLevel,
			NewLevel:     record.Level,
			OldXP:        oldXP,
			NewXP:        record.XP,
			CreatedAt:    time.Now(),
		})
		if err != nil {
			return err
		}

		result = record

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Applied progression change",
		zap.String("guildID", change.GuildID),
		zap.String("moderatorID", change.ModeratorID),
		zap.String("targetUserID", change.TargetUserID),
		zap.String("operation", string(change.Operation)),
		zap.Int64("newLevel", result.Level),
		zap.Int64("newXP", result.XP))

	return result, nil
}

// lockRecord fetches the target row FOR UPDATE, creating a zeroed row first
// if the member has never been touched.
func (s *ProgressionService) lockRecord(
	ctx context.Context, tx bun.Tx, guildID, userID string,
) (*types.ProgressionRecord, error) {
	record := types.NewProgressionRecord(guildID, userID)

	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (guild_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create progression record: %w", err)
	}

	err = tx.NewSelect().
		Model(record).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrProgressionNotFound
		}

		return nil, fmt.Errorf("failed to lock progression record: %w", err)
	}

	return record, nil
}
