package main

import (
	"log"
	"os"

	"mod-bot/bot"
	"mod-bot/config"
	"mod-bot/handlers"
	"mod-bot/moderation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	actor := moderation.NewActor(cfg.DataDir)

	b, err := bot.New(cfg, actor)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
