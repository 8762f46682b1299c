package leveling

import (
	"context"
	"slices"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"go.uber.org/zap"
)

// CompareRewards orders reward tiers for resolution: highest required level
// first, ties broken by lowest tier order (the tier meant to be earned
// first wins a tie).
func CompareRewards(a, b *types.RoleReward) int {
	if a.RequiredLevel != b.RequiredLevel {
		if a.RequiredLevel > b.RequiredLevel {
			return -1
		}

		return 1
	}

	return a.TierOrder - b.TierOrder
}

// Resolve picks the single reward role a member should hold at the given
// level. Returns an empty grant when no tier qualifies; revoke always lists
// every other reward role in the table, so applying the result leaves
// exactly one reward role (or none) on the member.
func Resolve(newLevel int64, table []*types.RoleReward) (grantRoleID string, revokeRoleIDs []string) {
	sorted := slices.Clone(table)
	slices.SortStableFunc(sorted, CompareRewards)

	for _, reward := range sorted {
		if reward.RequiredLevel <= newLevel {
			grantRoleID = reward.RoleID
			break
		}
	}

	revokeRoleIDs = make([]string, 0, len(sorted))

	for _, reward := range sorted {
		if reward.RoleID != grantRoleID {
			revokeRoleIDs = append(revokeRoleIDs, reward.RoleID)
		}
	}

	return grantRoleID, revokeRoleIDs
}

// SyncPlan is the set of role mutations needed to reach the target state.
// An empty plan means the member's roles already match.
type SyncPlan struct {
	Add    []string
	Remove []string
}

// IsEmpty reports whether the plan requires no mutations.
func (p SyncPlan) IsEmpty() bool {
	return len(p.Add) == 0 && len(p.Remove) == 0
}

// PlanSync diffs a resolution against the roles the member currently holds.
// Resolving twice with unchanged inputs yields an empty plan the second
// time, making role sync idempotent.
func PlanSync(held []string, grantRoleID string, revokeRoleIDs []string) SyncPlan {
	var plan SyncPlan

	if grantRoleID != "" && !slices.Contains(held, grantRoleID) {
		plan.Add = append(plan.Add, grantRoleID)
	}

	for _, roleID := range revokeRoleIDs {
		if slices.Contains(held, roleID) {
			plan.Remove = append(plan.Remove, roleID)
		}
	}

	return plan
}

// MemberRoleClient is the external collaborator that reads and mutates a
// guild member's roles. Implementations call the chat platform; failures
// are expected and treated as non-fatal by the Syncer.
type MemberRoleClient interface {
	MemberRoles(ctx context.Context, guildID, userID string) ([]string, error)
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
}

// RewardSource provides the guild's configured reward tiers.
type RewardSource interface {
	ListByGuild(ctx context.Context, guildID string) ([]*types.RoleReward, error)
}

// Syncer reconciles a member's reward roles with their level. XP and level
// state stay authoritative: any failure here leaves the roles out of sync
// until the next level-up rather than affecting the persisted record.
type Syncer struct {
	client  MemberRoleClient
	rewards RewardSource
	timeout time.Duration
	logger  *zap.Logger
}

// NewSyncer creates a role syncer. Each sync is bounded by timeout so a
// slow platform call cannot stall the accrual pipeline.
func NewSyncer(client MemberRoleClient, rewards RewardSource, timeout time.Duration, logger *zap.Logger) *Syncer {
	return &Syncer{
		client:  client,
		rewards: rewards,
		timeout: timeout,
		logger:  logger.Named("role_syncer"),
	}
}

// Sync brings a member's reward roles in line with their level. Individual
// role mutations that fail are logged and skipped; the remaining mutations
// still run.
func (s *Syncer) Sync(ctx context.Context, guildID, userID string, level int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	table, err := s.rewards.ListByGuild(ctx, guildID)
	if err != nil {
		return err
	}

	if len(table) == 0 {
		return nil
	}

	grantRoleID, revokeRoleIDs := Resolve(level, table)

	held, err := s.client.MemberRoles(ctx, guildID, userID)
	if err != nil {
		return err
	}

	plan := PlanSync(held, grantRoleID, revokeRoleIDs)
	if plan.IsEmpty() {
		return nil
	}

	for _, roleID := range plan.Remove {
		if err := s.client.RemoveRole(ctx, guildID, userID, roleID); err != nil {
			s.logger.Warn("Failed to remove reward role",
				zap.Error(err),
				zap.String("guildID", guildID),
				zap.String("userID", userID),
				zap.String("roleID", roleID))
		}
	}

	for _, roleID := range plan.Add {
		if err := s.client.AddRole(ctx, guildID, userID, roleID); err != nil {
			s.logger.Warn("Failed to add reward role",
				zap.Error(err),
				zap.String("guildID", guildID),
				zap.String("userID", userID),
				zap.String("roleID", roleID))
		}
	}

	s.logger.Debug("Synced reward roles",
		zap.String("guildID", guildID),
		zap.String("userID", userID),
		zap.Int64("level", level),
		zap.Strings("added", plan.Add),
		zap.Strings("removed", plan.Remove))

	return nil
}
