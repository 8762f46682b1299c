package types

import (
	"errors"
	"time"
)

var (
	ErrProgressionNotFound = errors.New("progression record not found")
	ErrRewardNotFound      = errors.New("role reward not found")
	ErrNegativeValue       = errors.New("value must not be negative")
)

// ProgressionRecord tracks a member's XP accumulation within a guild.
// Guild and user IDs are Discord snowflakes kept as opaque strings;
// parsing them as integers risks precision loss in downstream consumers.
type ProgressionRecord struct {
	GuildID        string    `bun:",pk"                    json:"guildId"`
	UserID         string    `bun:",pk"                    json:"userId"`
	XP             int64     `bun:",notnull,default:0"     json:"xp"`
	Level          int64     `bun:",notnull,default:0"     json:"level"`
	MessageCount   int64     `bun:",notnull,default:0"     json:"messageCount"`
	LastActivityAt time.Time `bun:",nullzero"              json:"lastActivityAt"`
	CreatedAt      time.Time `bun:",notnull"               json:"createdAt"`
	UpdatedAt      time.Time `bun:",notnull"               json:"updatedAt"`
}

// NewProgressionRecord creates a zeroed record for a guild member.
func NewProgressionRecord(guildID, userID string) *ProgressionRecord {
	now := time.Now()

	return &ProgressionRecord{
		GuildID:   guildID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks that the record's counters are non-negative.
func (r *ProgressionRecord) Validate() error {
	if r.XP < 0 || r.Level < 0 || r.MessageCount < 0 {
		return ErrNegativeValue
	}

	return nil
}

// RoleReward binds a Discord role to a minimum level threshold.
// DisplayName is a snapshot taken at configuration time, not a live
// reference to the role's current name.
type RoleReward struct {
	GuildID       string    `bun:",pk"                json:"guildId"`
	RoleID        string    `bun:",pk"                json:"roleId"`
	DisplayName   string    `bun:",notnull"           json:"displayName"`
	RequiredLevel int64     `bun:",notnull"           json:"requiredLevel"`
	TierOrder     int       `bun:",notnull,default:1" json:"tierOrder"`
	CreatedAt     time.Time `bun:",notnull"           json:"createdAt"`
}

// Validate checks that the reward's threshold and tier order are sane.
func (r *RoleReward) Validate() error {
	if r.RequiredLevel < 0 || r.TierOrder < 1 {
		return ErrNegativeValue
	}

	return nil
}
