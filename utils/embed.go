package utils

import (
	"fmt"
	"sort"
	"strings"

	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

// ProfileEmbed renders a user's punishment history, most recent record
// first. An empty or missing history renders as "no punishment history",
// never as an empty table.
func ProfileEmbed(userID string, profile *model.Profile) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Moderation history for %s", userID),
		Color: 0xED4245,
	}
	if profile == nil || len(profile.Punishments) == 0 {
		embed.Description = fmt.Sprintf("<@%s> has no punishment history.", userID)
		return embed
	}

	ids := make([]int64, 0, len(profile.Punishments))
	for id := range profile.Punishments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	for _, id := range ids {
		record := profile.Punishments[id]
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d · %s", record.ID, strings.ToUpper(string(record.Kind))),
			Value: formatRecord(record),
		})
	}
	return embed
}

func formatRecord(record model.PunishmentRecord) string {
	reason := record.Reason
	if reason == "" {
		reason = "No reason given"
	}
	window := fmt.Sprintf("<t:%d:f> — permanent", record.IssuedAt)
	if !record.Permanent() {
		window = fmt.Sprintf("<t:%d:f> — <t:%d:f>", record.IssuedAt, record.ExpiresAt)
	}
	return fmt.Sprintf("%s\n%s\nModerator: <@%s>", reason, window, record.Moderator)
}
