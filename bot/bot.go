package bot

import (
	"log"

	"mod-bot/model"
	"mod-bot/moderation"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Actor              *moderation.Actor
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand
}

func New(cfg *model.Config, actor *moderation.Actor) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentGuildModeration
	dg.StateEnabled = false

	return &Bot{
		Session: dg,
		Config:  cfg,
		Actor:   actor,
	}, nil
}

// Close shuts the gateway connection first so no new requests arrive,
// then stops the actor, which parks its timers and closes every guild
// database. Leaving a store handle open risks a hang on the next open.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
	b.Actor.Stop()
}

func (b *Bot) RefreshCommands(guildID string, cmds []*discordgo.ApplicationCommand) {
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
