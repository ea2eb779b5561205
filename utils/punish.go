package utils

import (
	"fmt"
	"time"

	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

const mutedRoleName = "Muted"

// DiscordActionApplier maps punishment records onto Discord moderation
// effects. Warn records have no platform effect.
type DiscordActionApplier struct {
	Session *discordgo.Session
}

// Apply enacts the punishment on the guild member.
func (d *DiscordActionApplier) Apply(guildID, userID string, record model.PunishmentRecord) error {
	switch record.Kind {
	case model.PunishBan:
		return d.Session.GuildBanCreateWithReason(guildID, userID, record.Reason, 0)
	case model.PunishMute:
		roleID, err := d.mutedRole(guildID)
		if err != nil {
			return err
		}
		return d.Session.GuildMemberRoleAdd(guildID, userID, roleID)
	case model.PunishTimeout:
		until := time.Unix(record.ExpiresAt, 0)
		return d.Session.GuildMemberTimeout(guildID, userID, &until)
	case model.PunishWarn:
		return nil
	default:
		return fmt.Errorf("unknown punishment kind %q", record.Kind)
	}
}

// Revert undoes the punishment's platform effect.
func (d *DiscordActionApplier) Revert(guildID, userID string, record model.PunishmentRecord) error {
	switch record.Kind {
	case model.PunishBan:
		return d.Session.GuildBanDelete(guildID, userID)
	case model.PunishMute:
		roleID, err := d.mutedRole(guildID)
		if err != nil {
			return err
		}
		return d.Session.GuildMemberRoleRemove(guildID, userID, roleID)
	case model.PunishTimeout:
		return d.Session.GuildMemberTimeout(guildID, userID, nil)
	case model.PunishWarn:
		return nil
	default:
		return fmt.Errorf("unknown punishment kind %q", record.Kind)
	}
}

func (d *DiscordActionApplier) mutedRole(guildID string) (string, error) {
	roles, err := d.Session.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("failed to list roles for guild %s: %w", guildID, err)
	}
	for _, role := range roles {
		if role.Name == mutedRoleName {
			return role.ID, nil
		}
	}
	return "", fmt.Errorf("guild %s has no %q role", guildID, mutedRoleName)
}
