package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mod-bot/commands"
	"mod-bot/moderation"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
)

// Run opens the gateway, hands the actor its collaborators, builds every
// configured guild's record store, registers the slash commands, and
// blocks until interrupted.
func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	b.Actor.Start()
	b.Actor.Enqueue(moderation.InitRequest{
		Applier: &utils.DiscordActionApplier{Session: b.Session},
		Threads: &utils.DiscordThreadSurface{Session: b.Session},
	})

	for _, guildCfg := range b.Config.GuildConfigs {
		b.Actor.Enqueue(moderation.BuildRequest{
			GuildID: guildCfg.GuildID,
			Surfaces: moderation.GuildSurfaces{
				LogChannelID:    guildCfg.LogChannelID,
				NotifyChannelID: guildCfg.NotifyChannelID,
			},
		})
	}

	log.Println("Registering commands for configured guilds...")
	b.RegisteredCommands = make([]*discordgo.ApplicationCommand, 0)
	cmds := commands.Generate()
	for guildID := range b.Config.GuildConfigs {
		b.RefreshCommands(guildID, cmds)
	}

	if b.Config.LogWebhookURL != "" {
		if err := utils.LogInfo(b.Config.LogWebhookURL, "System", "Startup", "Bot has started successfully."); err != nil {
			log.Printf("Failed to send startup log: %v", err)
		}
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
