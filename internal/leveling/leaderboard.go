package leveling

import (
	"context"
	"time"

	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling/curve"
	"go.uber.org/zap"
)

// Entry is one row of a guild leaderboard page.
type Entry struct {
	UserID string
	Level  int64
	XP     int64
	Rank   int64
}

// Progress describes a single member's standing for display.
type Progress struct {
	XP           int64
	Level        int64
	MessageCount int64
	Rank         int64
	XPToNext     int64
}

// RankStore is the read surface the leaderboard works against.
type RankStore interface {
	GetOrCreate(ctx context.Context, guildID, userID string) (*types.ProgressionRecord, error)
	LeaderboardPage(ctx context.Context, guildID string, page, pageSize int) ([]*types.ProgressionRecord, error)
	Rank(ctx context.Context, guildID, userID string) (int64, error)
	CountActiveSince(ctx context.Context, guildID string, since time.Time) (int, error)
}

// Leaderboard produces ordered guild rankings and per-member progress.
type Leaderboard struct {
	store  RankStore
	logger *zap.Logger
}

// NewLeaderboard creates a leaderboard ranker over the progression store.
func NewLeaderboard(store RankStore, logger *zap.Logger) *Leaderboard {
	return &Leaderboard{
		store:  store,
		logger: logger.Named("leaderboard"),
	}
}

// Page returns one page of the guild ranking. Ranks are absolute 1-based
// positions in the full ordering, so page 2 continues from where page 1
// left off.
func (l *Leaderboard) Page(ctx context.Context, guildID string, page, pageSize int) ([]Entry, error) {
	records, err := l.store.LeaderboardPage(ctx, guildID, page, pageSize)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(records))
	base := int64(page-1) * int64(pageSize)

	for i, record := range records {
		entries[i] = Entry{
			UserID: record.UserID,
			Level:  record.Level,
			XP:     record.XP,
			Rank:   base + int64(i) + 1,
		}
	}

	return entries, nil
}

// Progress returns a member's level, XP, rank, and XP remaining to the
// next level. The record is created lazily on first view.
func (l *Leaderboard) Progress(ctx context.Context, guildID, userID string) (*Progress, error) {
	record, err := l.store.GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	rank, err := l.store.Rank(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	return &Progress{
		XP:           record.XP,
		Level:        record.Level,
		MessageCount: record.MessageCount,
		Rank:         rank,
		XPToNext:     curve.XPToNext(record.XP),
	}, nil
}

// ActiveToday counts guild members who earned XP in the last 24 hours.
func (l *Leaderboard) ActiveToday(ctx context.Context, guildID string) (int, error) {
	return l.store.CountActiveSince(ctx, guildID, time.Now().Add(-24*time.Hour))
}
