package bot

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"
)

// handleGuildMessageCreate feeds guild chat activity into the accrual
// pipeline and announces level-ups in the channel the message came from.
func (b *Bot) handleGuildMessageCreate(event *events.GuildMessageCreate) {
	if event.Message.Author.Bot || event.Message.Author.System {
		return
	}

	ctx := context.Background()
	guildID := event.GuildID.String()
	userID := event.Message.Author.ID.String()

	result, err := b.accrual.Grant(ctx, guildID, userID)
	if err != nil {
		b.logger.Error("Failed to grant message XP",
			zap.String("guild_id", guildID),
			zap.String("user_id", userID),
			zap.Error(err))

		return
	}

	if !result.LeveledUp {
		return
	}

	message := discord.NewMessageCreateBuilder().
		SetContentf("Congratulations %s, you reached level **%d**!",
			event.Message.Author.Mention(), result.NewLevel).
		Build()

	if _, err := b.client.Rest().CreateMessage(event.Message.ChannelID, message); err != nil {
		b.logger.Warn("Failed to send level-up announcement",
			zap.String("guild_id", guildID),
			zap.String("channel_id", event.Message.ChannelID.String()),
			zap.Error(err))
	}
}
