package leveling

import (
	"context"
	"errors"
	"fmt"

	"github.com/Suhaib3100/quasar-2.0/internal/database/service"
	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"go.uber.org/zap"
)

// Authorizer checks whether a caller holds a guild's administrative
// capability. Implementations consult the chat platform.
type Authorizer interface {
	IsAdmin(ctx context.Context, guildID, callerID string) (bool, error)
}

// AdminService applies a validated administrative change transactionally
// and returns the resulting record.
type AdminService interface {
	Apply(ctx context.Context, change *service.AdminChange) (*types.ProgressionRecord, error)
}

// AuditSource reads back previously recorded administrative changes.
type AuditSource interface {
	GetByGuild(ctx context.Context, guildID string, limit int) ([]*types.ProgressionAuditLog, error)
}

// AdminOps exposes administrative progression mutations. Every operation
// bypasses the cooldown gate but still flows through the progression curve
// and role resolution, so an admin change leaves the member in the same
// state a natural level-up would have.
type AdminOps struct {
	auth    Authorizer
	service AdminService
	audit   AuditSource
	syncer  *Syncer
	logger  *zap.Logger
}

// NewAdminOps creates the administrative operations entry point.
func NewAdminOps(auth Authorizer, svc AdminService, audit AuditSource, syncer *Syncer, logger *zap.Logger) *AdminOps {
	return &AdminOps{
		auth:    auth,
		service: svc,
		audit:   audit,
		syncer:  syncer,
		logger:  logger.Named("admin_ops"),
	}
}

// SetLevel sets a member's level, pinning XP to the minimum required for
// that level so the record stays consistent with the curve.
func (o *AdminOps) SetLevel(
	ctx context.Context, guildID, callerID, targetID string, level int64, reason string,
) (*types.ProgressionRecord, error) {
	if level < 0 {
		return nil, fmt.Errorf("%w: level must not be negative", ErrInvalidArgument)
	}

	return o.apply(ctx, &service.AdminChange{
		GuildID:      guildID,
		ModeratorID:  callerID,
		TargetUserID: targetID,
		Operation:    types.AuditOperationSetLevel,
		Amount:       level,
		Reason:       reason,
	}, callerID)
}

// SetXP sets a member's XP total and re-derives their level.
func (o *AdminOps) SetXP(
	ctx context.Context, guildID, callerID, targetID string, xp int64, reason string,
) (*types.ProgressionRecord, error) {
	if xp < 0 {
		return nil, fmt.Errorf("%w: xp must not be negative", ErrInvalidArgument)
	}

	return o.apply(ctx, &service.AdminChange{
		GuildID:      guildID,
		ModeratorID:  callerID,
		TargetUserID: targetID,
		Operation:    types.AuditOperationSetXP,
		Amount:       xp,
		Reason:       reason,
	}, callerID)
}

// AdjustXP adds a signed delta to a member's XP, clamped at zero, and
// re-derives their level.
func (o *AdminOps) AdjustXP(
	ctx context.Context, guildID, callerID, targetID string, delta int64, reason string,
) (*types.ProgressionRecord, error) {
	return o.apply(ctx, &service.AdminChange{
		GuildID:      guildID,
		ModeratorID:  callerID,
		TargetUserID: targetID,
		Operation:    types.AuditOperationAdjustXP,
		Amount:       delta,
		Reason:       reason,
	}, callerID)
}

// Reset zeroes a member's progression. The row is kept; repeating the
// reset yields the same zeroed record.
func (o *AdminOps) Reset(
	ctx context.Context, guildID, callerID, targetID string, reason string,
) (*types.ProgressionRecord, error) {
	return o.apply(ctx, &service.AdminChange{
		GuildID:      guildID,
		ModeratorID:  callerID,
		TargetUserID: targetID,
		Operation:    types.AuditOperationReset,
		Reason:       reason,
	}, callerID)
}

// History returns the guild's most recent administrative changes, newest
// first. Admin-gated like the mutations it reports on.
func (o *AdminOps) History(ctx context.Context, guildID, callerID string, limit int) ([]*types.ProgressionAuditLog, error) {
	isAdmin, err := o.auth.IsAdmin(ctx, guildID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check caller permission: %w", err)
	}

	if !isAdmin {
		return nil, ErrPermissionDenied
	}

	if limit < 1 || limit > maxHistoryEntries {
		limit = maxHistoryEntries
	}

	logs, err := o.audit.GetByGuild(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return logs, nil
}

// maxHistoryEntries caps one history page at what fits in a single embed.
const maxHistoryEntries = 20

// apply authorizes the caller, performs the mutation, and reconciles the
// member's reward roles against the resulting level. Role sync failures
// are logged but never undo the persisted change.
func (o *AdminOps) apply(ctx context.Context, change *service.AdminChange, callerID string) (*types.ProgressionRecord, error) {
	isAdmin, err := o.auth.IsAdmin(ctx, change.GuildID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check caller permission: %w", err)
	}

	if !isAdmin {
		return nil, ErrPermissionDenied
	}

	record, err := o.service.Apply(ctx, change)
	if err != nil {
		if errors.Is(err, types.ErrNegativeValue) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}

		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	if o.syncer != nil {
		if err := o.syncer.Sync(ctx, change.GuildID, change.TargetUserID, record.Level); err != nil {
			o.logger.Warn("Role sync after admin change failed",
				zap.Error(err),
				zap.String("guildID", change.GuildID),
				zap.String("targetUserID", change.TargetUserID),
				zap.Int64("level", record.Level))
		}
	}

	return record, nil
}
