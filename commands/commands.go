package commands

import (
	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

func kindChoices() []*discordgo.ApplicationCommandOptionChoice {
	kinds := []model.PunishmentKind{model.PunishWarn, model.PunishMute, model.PunishTimeout, model.PunishBan}
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(kinds))
	for _, kind := range kinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(kind),
			Value: string(kind),
		})
	}
	return choices
}

// selectorOptions are shared by edit and remove: target one punishment
// by ID or by the "latest" flag.
func selectorOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Punishment ID shown in the profile",
		},
		{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "latest",
			Description: "Target the most recent punishment",
		},
	}
}

// Generate returns the slash commands registered per guild.
func Generate() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "punish",
			Description: "Record a punishment and apply it",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Who to punish",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "Kind of punishment",
					Required:    true,
					Choices:     kindChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "How long, e.g. 30m, 12h, 7d; omit for permanent",
				},
			},
		},
		{
			Name:        "punish-edit",
			Description: "Change the reason or duration of a punishment",
			Options: append([]*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Whose punishment to edit",
					Required:    true,
				},
			}, append(selectorOptions(),
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "New reason",
				},
				&discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "New duration, counted from when it was issued",
				})...),
		},
		{
			Name:        "punish-remove",
			Description: "Remove a punishment and revert its effect",
			Options: append([]*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Whose punishment to remove",
					Required:    true,
				},
			}, selectorOptions()...),
		},
		{
			Name:        "mod-profile",
			Description: "Show a user's punishment history",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Whose history to show",
					Required:    true,
				},
			},
		},
		{
			Name:        "mod-recent",
			Description: "Show the most recently touched profiles",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "limit",
					Description: "How many profiles to list (default 10)",
				},
			},
		},
		{
			Name:        "mod-role",
			Description: "Allow or deny a role the moderation commands",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role to adjust",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "allow",
					Description: "Whether the role may use moderation commands",
					Required:    true,
				},
			},
		},
		{
			Name:        "mod-status",
			Description: "Bot and database diagnostics",
		},
	}
}
