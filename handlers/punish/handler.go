package punish

import (
	"fmt"
	"log"
	"strings"

	"mod-bot/bot"
	"mod-bot/model"
	"mod-bot/moderation"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// HandlePunishCommand records and applies a punishment. The heavy
// lifting happens on the actor; the handler only parses options,
// enqueues, and relays the acknowledgement.
func HandlePunishCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts := optionMap(i)
	target := opts["user"].UserValue(s)
	kind := model.PunishmentKind(opts["type"].StringValue())

	if !utils.CheckAndSetPunishLock(i.GuildID, target.ID) {
		utils.SendFollowUpError(s, i.Interaction, "This user was punished moments ago; try again shortly.")
		return
	}

	reason, _ := stringOption(opts, "reason")
	req := moderation.AddPunishmentRequest{
		GuildID:   i.GuildID,
		UserID:    target.ID,
		Kind:      kind,
		Reason:    reason,
		Moderator: i.Member.User.ID,
		Respond:   respondAndNotify(s, i, b),
	}
	if durStr, ok := stringOption(opts, "duration"); ok {
		duration, err := utils.ParseDuration(durStr)
		if err != nil || duration <= 0 {
			utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Invalid duration %q. Use forms like 30m, 12h or 7d.", durStr))
			return
		}
		req.Duration = duration
	}
	b.Actor.Enqueue(req)
}

// HandleEditCommand changes the reason and/or duration of one punishment.
func HandleEditCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts := optionMap(i)
	target := opts["user"].UserValue(s)

	req := moderation.EditPunishmentRequest{
		GuildID:  i.GuildID,
		UserID:   target.ID,
		Selector: parseSelector(opts),
		Respond:  followUp(s, i),
	}
	if reason, ok := stringOption(opts, "reason"); ok {
		req.Reason = &reason
	}
	if durStr, ok := stringOption(opts, "duration"); ok {
		duration, err := utils.ParseDuration(durStr)
		if err != nil || duration <= 0 {
			utils.SendFollowUpError(s, i.Interaction, fmt.Sprintf("Invalid duration %q. Use forms like 30m, 12h or 7d.", durStr))
			return
		}
		req.Duration = &duration
	}
	if req.Reason == nil && req.Duration == nil {
		utils.SendFollowUpError(s, i.Interaction, "Nothing to change: give a new reason or duration.")
		return
	}
	b.Actor.Enqueue(req)
}

// HandleRemoveCommand removes one punishment and reverts its effect.
func HandleRemoveCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts := optionMap(i)
	target := opts["user"].UserValue(s)

	b.Actor.Enqueue(moderation.RemovePunishmentRequest{
		GuildID:  i.GuildID,
		UserID:   target.ID,
		Selector: parseSelector(opts),
		Respond:  respondAndNotify(s, i, b),
	})
}

// HandleProfileCommand shows a user's punishment history.
func HandleProfileCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts := optionMap(i)
	target := opts["user"].UserValue(s)

	b.Actor.Enqueue(moderation.FetchProfileRequest{
		GuildID: i.GuildID,
		UserID:  target.ID,
		Deliver: func(profile *model.Profile) {
			utils.SendFollowUpEmbed(s, i.Interaction, utils.ProfileEmbed(target.ID, profile))
		},
	})
}

// HandleRecentCommand lists the most recently touched profiles.
func HandleRecentCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	limit := 10
	if opt, ok := optionMap(i)["limit"]; ok && opt.IntValue() > 0 {
		limit = int(opt.IntValue())
	}

	b.Actor.Enqueue(moderation.RecentProfilesRequest{
		GuildID: i.GuildID,
		Limit:   limit,
		Deliver: func(profiles []*model.Profile) {
			if len(profiles) == 0 {
				utils.SendFollowUp(s, i.Interaction, "No moderation cases recorded yet.")
				return
			}
			var lines []string
			for _, p := range profiles {
				lines = append(lines, fmt.Sprintf("<@%s> — %d punishment(s)", p.UserID, len(p.Punishments)))
			}
			utils.SendFollowUpEmbed(s, i.Interaction, &discordgo.MessageEmbed{
				Title:       "Recent moderation cases",
				Description: strings.Join(lines, "\n"),
				Color:       0xED4245,
			})
		},
	})
}

// HandleRoleCommand adjusts the per-role command gate.
func HandleRoleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}
	opts := optionMap(i)
	role := opts["role"].RoleValue(s, i.GuildID)

	b.Actor.Enqueue(moderation.RoleAdjustRequest{
		GuildID: i.GuildID,
		RoleID:  role.ID,
		Allow:   opts["allow"].BoolValue(),
		Respond: followUp(s, i),
	})
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate) moderation.RespondFunc {
	return func(message string) {
		utils.SendFollowUp(s, i.Interaction, message)
	}
}

// respondAndNotify acknowledges the invoker and mirrors the outcome to
// the guild's notify channel, when one is configured.
func respondAndNotify(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) moderation.RespondFunc {
	return func(message string) {
		utils.SendFollowUp(s, i.Interaction, message)
		guildCfg, ok := b.Config.GuildConfigs[i.GuildID]
		if !ok || guildCfg.NotifyChannelID == "" {
			return
		}
		if _, err := s.ChannelMessageSend(guildCfg.NotifyChannelID, message); err != nil {
			log.Printf("Error notifying channel %s: %v", guildCfg.NotifyChannelID, err)
		}
	}
}
