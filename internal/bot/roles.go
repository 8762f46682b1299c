package bot

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// roleClient adapts the Discord REST API to the engine's member-role
// collaborator contract. The engine works in opaque string IDs; snowflake
// parsing stays confined to this adapter. The caller's context is passed
// through to every REST call so the syncer's deadline bounds them.
type roleClient struct {
	client bot.Client
}

func newRoleClient(client bot.Client) *roleClient {
	return &roleClient{client: client}
}

// MemberRoles returns the IDs of all roles the member currently holds.
func (c *roleClient) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	gID, uID, err := parseIDs(guildID, userID)
	if err != nil {
		return nil, err
	}

	member, err := c.client.Rest().GetMember(gID, uID, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	roleIDs := make([]string, len(member.RoleIDs))
	for i, roleID := range member.RoleIDs {
		roleIDs[i] = roleID.String()
	}

	return roleIDs, nil
}

// AddRole grants a role to the member.
func (c *roleClient) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	gID, uID, err := parseIDs(guildID, userID)
	if err != nil {
		return err
	}

	rID, err := snowflake.Parse(roleID)
	if err != nil {
		return fmt.Errorf("failed to parse role ID: %w", err)
	}

	if err := c.client.Rest().AddMemberRole(gID, uID, rID, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to add member role: %w", err)
	}

	return nil
}

// RemoveRole revokes a role from the member.
func (c *roleClient) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	gID, uID, err := parseIDs(guildID, userID)
	if err != nil {
		return err
	}

	rID, err := snowflake.Parse(roleID)
	if err != nil {
		return fmt.Errorf("failed to parse role ID: %w", err)
	}

	if err := c.client.Rest().RemoveMemberRole(gID, uID, rID, rest.WithCtx(ctx)); err != nil {
		return fmt.Errorf("failed to remove member role: %w", err)
	}

	return nil
}

// authorizer checks a guild's administrative capability through the
// Discord REST API: the guild owner always qualifies, otherwise the
// member's roles must carry the Administrator permission.
type authorizer struct {
	client bot.Client
}

func newAuthorizer(client bot.Client) *authorizer {
	return &authorizer{client: client}
}

// IsAdmin implements leveling.Authorizer.
func (a *authorizer) IsAdmin(ctx context.Context, guildID, callerID string) (bool, error) {
	gID, uID, err := parseIDs(guildID, callerID)
	if err != nil {
		return false, err
	}

	guild, err := a.client.Rest().GetGuild(gID, false, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get guild: %w", err)
	}

	if guild.OwnerID == uID {
		return true, nil
	}

	member, err := a.client.Rest().GetMember(gID, uID, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get member: %w", err)
	}

	roles, err := a.client.Rest().GetRoles(gID, rest.WithCtx(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to get guild roles: %w", err)
	}

	var permissions discord.Permissions

	for _, role := range roles {
		// The @everyone role shares the guild's ID and applies to all members
		if role.ID == gID {
			permissions = permissions.Add(role.Permissions)
			continue
		}

		for _, roleID := range member.RoleIDs {
			if role.ID == roleID {
				permissions = permissions.Add(role.Permissions)
				break
			}
		}
	}

	return permissions.Has(discord.PermissionAdministrator), nil
}

func parseIDs(guildID, userID string) (snowflake.ID, snowflake.ID, error) {
	gID, err := snowflake.Parse(guildID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse guild ID: %w", err)
	}

	uID, err := snowflake.Parse(userID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return gID, uID, nil
}
