package utils

import (
	"fmt"

	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

// DiscordThreadSurface keeps one forum post per profile in the guild's
// log channel, named after the user, with the history embed as its head
// message.
type DiscordThreadSurface struct {
	Session *discordgo.Session
}

// Create opens the profile's forum post and returns the thread ID.
func (d *DiscordThreadSurface) Create(logChannelID, userID string, profile *model.Profile) (string, error) {
	thread, err := d.Session.ForumThreadStartComplex(logChannelID, &discordgo.ThreadStart{
		Name: userID,
	}, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{ProfileEmbed(userID, profile)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create moderation thread for user %s: %w", userID, err)
	}
	return thread.ID, nil
}

// Update rewrites the thread's head message with the current history.
// A forum post's starter message shares the thread's ID.
func (d *DiscordThreadSurface) Update(threadID string, profile *model.Profile) error {
	_, err := d.Session.ChannelMessageEditEmbed(threadID, threadID, ProfileEmbed(profile.UserID, profile))
	if err != nil {
		return fmt.Errorf("failed to update moderation thread %s: %w", threadID, err)
	}
	return nil
}
