package handlers

import (
	"log"
	"time"

	"mod-bot/bot"
	"mod-bot/handlers/punish"
	"mod-bot/moderation"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderator := func(h func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !isModerator(b, i) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			h(s, i, b)
		}
	}
	admin := func(h func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if !isAdmin(b, i) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			h(s, i, b)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"punish":        moderator(punish.HandlePunishCommand),
		"punish-edit":   moderator(punish.HandleEditCommand),
		"punish-remove": moderator(punish.HandleRemoveCommand),
		"mod-profile":   moderator(punish.HandleProfileCommand),
		"mod-recent":    moderator(punish.HandleRecentCommand),
		"mod-role":      admin(punish.HandleRoleCommand),
		"mod-status": admin(func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
			SystemInfoHandler(s, i, b)
		}),
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", r.User.Username, r.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
}

// isAdmin checks the config-level gate: developer user IDs and the
// guild's configured admin roles.
func isAdmin(b *bot.Bot, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	guildCfg, ok := b.Config.GuildConfigs[i.GuildID]
	if !ok {
		log.Printf("Could not find guild config for guild: %s", i.GuildID)
		return false
	}
	level := utils.CheckPermission(i.Member.Roles, i.Member.User.ID, guildCfg.AdminRoleIDs, b.Config.DeveloperUserIDs)
	return level != utils.GuestPermission
}

// isModerator additionally consults the per-role gate persisted in the
// guild's database.
func isModerator(b *bot.Bot, i *discordgo.InteractionCreate) bool {
	if isAdmin(b, i) {
		return true
	}
	if i.Member == nil {
		return false
	}

	reply := make(chan bool, 1)
	b.Actor.Enqueue(moderation.RolePermissionQuery{
		GuildID: i.GuildID,
		RoleIDs: i.Member.Roles,
		Reply:   reply,
	})
	select {
	case allowed := <-reply:
		return allowed
	case <-time.After(5 * time.Second):
		log.Printf("Timed out checking role permissions in guild %s", i.GuildID)
		return false
	}
}
