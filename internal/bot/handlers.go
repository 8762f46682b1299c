package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"

	"github.com/Suhaib3100/quasar-2.0/internal/database/types"
	"github.com/Suhaib3100/quasar-2.0/internal/leveling"
)

const embedColor = 0x5865F2

// handleApplicationCommandInteraction dispatches slash commands to their
// handlers. Every handler defers the response first so slow paths
// (authorization lookups, role syncs) stay within Discord's deadline.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	if event.GuildID() == nil {
		if err := event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent("This command is only available in servers.").
			SetEphemeral(true).
			Build()); err != nil {
			b.logger.Warn("Failed to reject DM interaction", zap.Error(err))
		}

		return
	}

	data := event.SlashCommandInteractionData()

	var err error

	switch data.CommandName() {
	case RankCommandName:
		err = b.handleRank(event, data)
	case LeaderboardCommandName:
		err = b.handleLeaderboard(event, data)
	case SetLevelCommandName:
		err = b.handleSetLevel(event, data)
	case RankAdminCommandName:
		err = b.handleRankAdmin(event, data)
	case ResetCommandName:
		err = b.handleReset(event, data)
	case AuditCommandName:
		err = b.handleAudit(event, data)
	case ConfigRolesCommandName:
		err = b.handleConfigRoles(event, data)
	default:
		return
	}

	if err != nil {
		b.logger.Error("Command handler failed",
			zap.String("command", data.CommandName()),
			zap.String("guild_id", event.GuildID().String()),
			zap.Error(err))
	}
}

func (b *Bot) handleRank(
	event *events.ApplicationCommandInteractionCreate, _ discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(false); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	ctx := context.Background()
	user := event.User()

	progress, err := b.leaderboard.Progress(ctx, event.GuildID().String(), user.ID.String())
	if err != nil {
		return b.respondError(event, "Failed to look up your rank. Try again later.")
	}

	embed := discord.NewEmbedBuilder().
		SetTitlef("Rank for %s", user.EffectiveName()).
		SetColor(embedColor).
		AddField("Rank", fmt.Sprintf("#%d", progress.Rank), true).
		AddField("Level", fmt.Sprintf("%d", progress.Level), true).
		AddField("XP", fmt.Sprintf("%d", progress.XP), true).
		AddField("XP to Next Level", fmt.Sprintf("%d", progress.XPToNext), true).
		AddField("Messages", fmt.Sprintf("%d", progress.MessageCount), true).
		Build()

	return b.respond(event, discord.NewMessageUpdateBuilder().SetEmbeds(embed).Build())
}

func (b *Bot) handleLeaderboard(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(false); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	page := 1
	if p, ok := data.OptInt("page"); ok && p > 0 {
		page = p
	}

	entries, err := b.leaderboard.Page(context.Background(), event.GuildID().String(), page, b.config.Leveling.PageSize)
	if err != nil {
		return b.respondError(event, "Failed to load the leaderboard. Try again later.")
	}

	if len(entries) == 0 {
		return b.respond(event, discord.NewMessageUpdateBuilder().
			SetContentf("No entries on page %d.", page).
			Build())
	}

	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "**#%d** <@%s> — Level %d (%d XP)\n",
			entry.Rank, entry.UserID, entry.Level, entry.XP)
	}

	embedBuilder := discord.NewEmbedBuilder().
		SetTitlef("Leaderboard — Page %d", page).
		SetColor(embedColor).
		SetDescription(sb.String())

	// The activity count is decorative; a failure must not break the page.
	if active, err := b.leaderboard.ActiveToday(context.Background(), event.GuildID().String()); err == nil {
		embedBuilder.SetFooterTextf("%d members active in the last 24 hours", active)
	} else {
		b.logger.Warn("Failed to count active members",
			zap.String("guild_id", event.GuildID().String()),
			zap.Error(err))
	}

	return b.respond(event, discord.NewMessageUpdateBuilder().SetEmbeds(embedBuilder.Build()).Build())
}

func (b *Bot) handleSetLevel(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	targetID := data.Snowflake("user").String()
	level := int64(data.Int("level"))
	reason, _ := data.OptString("reason")

	record, err := b.adminOps.SetLevel(
		context.Background(), event.GuildID().String(), event.User().ID.String(), targetID, level, reason,
	)
	if err != nil {
		return b.respondAdminError(event, err)
	}

	return b.respond(event, discord.NewMessageUpdateBuilder().
		SetContentf("Set <@%s> to level **%d** (%d XP).", targetID, record.Level, record.XP).
		Build())
}

func (b *Bot) handleRankAdmin(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	ctx := context.Background()
	guildID := event.GuildID().String()
	callerID := event.User().ID.String()
	targetID := data.Snowflake("user").String()
	action := data.String("action")
	reason, _ := data.OptString("reason")

	amount, hasAmount := data.OptInt("amount")
	if action != actionReset && !hasAmount {
		return b.respondError(event, "This action requires an amount.")
	}

	var (
		record *types.ProgressionRecord
		err    error
	)

	switch action {
	case actionSetLevel:
		record, err = b.adminOps.SetLevel(ctx, guildID, callerID, targetID, int64(amount), reason)
	case actionSetXP:
		record, err = b.adminOps.SetXP(ctx, guildID, callerID, targetID, int64(amount), reason)
	case actionAdjustXP:
		record, err = b.adminOps.AdjustXP(ctx, guildID, callerID, targetID, int64(amount), reason)
	case actionReset:
		record, err = b.adminOps.Reset(ctx, guildID, callerID, targetID, reason)
	default:
		return b.respondError(event, "Unknown action.")
	}

	if err != nil {
		return b.respondAdminError(event, err)
	}

	return b.respond(event, discord.NewMessageUpdateBuilder().
		SetContentf("Done. <@%s> is now level **%d** with %d XP.", targetID, record.Level, record.XP).
		Build())
}

func (b *Bot) handleReset(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	targetID := data.Snowflake("user").String()

	_, err := b.adminOps.Reset(
		context.Background(), event.GuildID().String(), event.User().ID.String(), targetID, "",
	)
	if err != nil {
		return b.respondAdminError(event, err)
	}

	return b.respond(event, discord.NewMessageUpdateBuilder().
		SetContentf("Reset progression for <@%s>.", targetID).
		Build())
}

func (b *Bot) handleAudit(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	limit, _ := data.OptInt("limit")

	logs, err := b.adminOps.History(
		context.Background(), event.GuildID().String(), event.User().ID.String(), limit,
	)
	if err != nil {
		return b.respondAdminError(event, err)
	}

	if len(logs) == 0 {
		return b.respond(event, discord.NewMessageUpdateBuilder().
			SetContent("No rank changes recorded.").
			Build())
	}

	var sb strings.Builder
	for _, log := range logs {
		fmt.Fprintf(&sb, "<t:%d:d> <@%s> **%s** on <@%s>: level %d → %d, XP %d → %d",
			log.CreatedAt.Unix(), log.ModeratorID, log.Operation, log.TargetUserID,
			log.OldLevel, log.NewLevel, log.OldXP, log.NewXP)

		if log.Reason != "" {
			fmt.Fprintf(&sb, " (%s)", log.Reason)
		}

		sb.WriteByte('\n')
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Rank Change History").
		SetColor(embedColor).
		SetDescription(sb.String()).
		Build()

	return b.respond(event, discord.NewMessageUpdateBuilder().SetEmbeds(embed).Build())
}

func (b *Bot) handleConfigRoles(
	event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) error {
	if err := event.DeferCreateMessage(true); err != nil {
		return fmt.Errorf("failed to defer response: %w", err)
	}

	ctx := context.Background()
	guildID := event.GuildID().String()

	isAdmin, err := b.auth.IsAdmin(ctx, guildID, event.User().ID.String())
	if err != nil {
		return b.respondError(event, "Failed to verify your permissions. Try again later.")
	}

	if !isAdmin {
		return b.respondError(event, "You need administrator permissions to use this command.")
	}

	if data.SubCommandName == nil {
		return b.respondError(event, "Unknown subcommand.")
	}

	switch *data.SubCommandName {
	case "set":
		return b.configRolesSet(ctx, event, data, guildID)
	case "remove":
		return b.configRolesRemove(ctx, event, data, guildID)
	case "list":
		return b.configRolesList(ctx, event, guildID)
	default:
		return b.respondError(event, "Unknown subcommand.")
	}
}

func (b *Bot) configRolesSet(
	ctx context.Context,
	event *events.ApplicationCommandInteractionCreate,
	data discord.SlashCommandInteractionData,
	guildID string,
) error {
	reward := &types.RoleReward{
		GuildID:       guildID,
		RoleID:        data.Snowflake("role").String(),
		DisplayName:   data.String("name"),
		RequiredLevel: int64(data.Int("level")),
		TierOrder:     1,
	}
	if tier, ok := data.OptInt("tier"); ok {
		reward.TierOrder = tier
	}

	if err := reward.Validate(); err != nil {
		return b.respondError(event, "Invalid reward configuration: level and tier must not be negative.")
	}

	if err := b.db.Model().RoleReward().Upsert(ctx, reward); err != nil {
		return b.respondError(event, "Failed to save the reward role. Try again later.")
	}

	return b.respond(event, discord.NewMessageUpdateBuilder().
		SetContentf("Reward **%s** set: <@&%s> at level %d (tier %d).",
			reward.DisplayName, reward.RoleID, reward.RequiredLevel, reward.TierOrder).
		Build())
}

func (b *Bot) configRolesRemove(
	ctx context.Context,
	event *events.ApplicationCommandInteractionCreate,
	data discord.SlashCommandInteractionData,
	guildID string,
) error {
	roleID := data.Snowflake("role").String()

	err := b.db.Model().RoleReward().Remove(ctx, guildID, roleID)
	if err != nil {
		if errors.Is(err, types.ErrRewardNotFound) {
			return b.respondError(event, "That role is not configured as a reward.")
		}

		return b.respondError(event, "Failed to remove the reward role. Try again later.")
	}

	return b.respond(event, discord.NewMessageUpdateBuilder().
		SetContentf("Removed reward role <@&%s>.", roleID).
		Build())
}

func (b *Bot) configRolesList(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, guildID string,
) error {
	rewards, err := b.db.Model().RoleReward().ListByGuild(ctx, guildID)
	if err != nil {
		return b.respondError(event, "Failed to load reward roles. Try again later.")
	}

	if len(rewards) == 0 {
		return b.respond(event, discord.NewMessageUpdateBuilder().
			SetContent("No reward roles configured.").
			Build())
	}

	var sb strings.Builder
	for _, reward := range rewards {
		fmt.Fprintf(&sb, "**%s** — <@&%s> at level %d (tier %d)\n",
			reward.DisplayName, reward.RoleID, reward.RequiredLevel, reward.TierOrder)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("Reward Roles").
		SetColor(embedColor).
		SetDescription(sb.String()).
		Build()

	return b.respond(event, discord.NewMessageUpdateBuilder().SetEmbeds(embed).Build())
}

// respond replaces the deferred interaction response.
func (b *Bot) respond(event *events.ApplicationCommandInteractionCreate, update discord.MessageUpdate) error {
	_, err := b.client.Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), update)
	if err != nil {
		return fmt.Errorf("failed to update interaction response: %w", err)
	}

	return nil
}

func (b *Bot) respondError(event *events.ApplicationCommandInteractionCreate, message string) error {
	return b.respond(event, discord.NewMessageUpdateBuilder().SetContent(message).Build())
}

// respondAdminError translates engine errors into user-facing messages.
func (b *Bot) respondAdminError(event *events.ApplicationCommandInteractionCreate, err error) error {
	switch {
	case errors.Is(err, leveling.ErrPermissionDenied):
		return b.respondError(event, "You need administrator permissions to use this command.")
	case errors.Is(err, leveling.ErrInvalidArgument):
		return b.respondError(event, "Invalid value: levels and XP totals must not be negative.")
	default:
		b.logger.Error("Admin operation failed", zap.Error(err))
		return b.respondError(event, "Something went wrong applying the change. Try again later.")
	}
}
