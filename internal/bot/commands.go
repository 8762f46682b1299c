package bot

import (
	"github.com/disgoorg/disgo/discord"
)

// Command names handled by the bot.
const (
	RankCommandName        = "rank"
	LeaderboardCommandName = "leaderboard"
	SetLevelCommandName    = "setlevel"
	RankAdminCommandName   = "manipulaterank"
	ResetCommandName       = "reset"
	ConfigRolesCommandName = "configroles"
	AuditCommandName       = "audit"
)

// Admin action choices for the rank manipulation command.
const (
	actionSetLevel = "set_level"
	actionAdjustXP = "adjust_xp"
	actionSetXP    = "set_xp"
	actionReset    = "reset_rank"
)

// commands returns the slash command set registered at startup.
func commands() []discord.ApplicationCommandCreate {
	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        RankCommandName,
			Description: "Display your current rank and level progress",
		},
		discord.SlashCommandCreate{
			Name:        LeaderboardCommandName,
			Description: "Display server leaderboard",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "page",
					Description: "Leaderboard page to show",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        SetLevelCommandName,
			Description: "Set a user's level (Admin only)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to set the level for",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "level",
					Description: "The level to set",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the change",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        RankAdminCommandName,
			Description: "Manipulate user rank, level, and XP (Admin only)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to manipulate",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "action",
					Description: "What to manipulate",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "Set Level", Value: actionSetLevel},
						{Name: "Adjust XP", Value: actionAdjustXP},
						{Name: "Set XP", Value: actionSetXP},
						{Name: "Reset Rank", Value: actionReset},
					},
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Amount to change (level number or XP amount)",
				},
				discord.ApplicationCommandOptionString{
					Name:        "reason",
					Description: "Reason for the manipulation",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        ResetCommandName,
			Description: "Reset a user's XP and level (Admin only)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The user to reset",
					Required:    true,
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        AuditCommandName,
			Description: "Show recent rank changes made by admins (Admin only)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "limit",
					Description: "How many entries to show",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        ConfigRolesCommandName,
			Description: "Configure level reward roles (Admin only)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        "set",
					Description: "Add or update a reward role",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The role to award",
							Required:    true,
						},
						discord.ApplicationCommandOptionInt{
							Name:        "level",
							Description: "Level required to earn the role",
							Required:    true,
						},
						discord.ApplicationCommandOptionString{
							Name:        "name",
							Description: "Display name for the tier",
							Required:    true,
						},
						discord.ApplicationCommandOptionInt{
							Name:        "tier",
							Description: "Tier order used to break threshold ties",
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        "remove",
					Description: "Remove a reward role",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionRole{
							Name:        "role",
							Description: "The reward role to remove",
							Required:    true,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        "list",
					Description: "List configured reward roles",
				},
			},
		},
	}
}
