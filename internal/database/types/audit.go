package types

import (
	"time"

	"github.com/google/uuid"
)

// AuditOperation identifies the kind of administrative progression change.
type AuditOperation string

const (
	AuditOperationSetLevel AuditOperation = "set_level"
	AuditOperationSetXP    AuditOperation = "set_xp"
	AuditOperationAdjustXP AuditOperation = "adjust_xp"
	AuditOperationReset    AuditOperation = "reset"
)

// ProgressionAuditLog records a single administrative mutation of a
// member's progression, written in the same transaction as the change.
type ProgressionAuditLog struct {
	ID           uuid.UUID      `bun:",pk"      json:"id"`
	GuildID      string         `bun:",notnull" json:"guildId"`
	ModeratorID  string         `bun:",notnull" json:"moderatorId"`
	TargetUserID string         `bun:",notnull" json:"targetUserId"`
	Operation    AuditOperation `bun:",notnull" json:"operation"`
	Amount       int64          `bun:",notnull" json:"amount"`
	Reason       string         `bun:",notnull" json:"reason"`
	OldLevel     int64          `bun:",notnull" json:"oldLevel"`
	NewLevel     int64          `bun:",notnull" json:"newLevel"`
	OldXP        int64          `bun:",notnull" json:"oldXp"`
	NewXP        int64          `bun:",notnull" json:"newXp"`
	CreatedAt    time.Time      `bun:",notnull" json:"createdAt"`
}
