package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"mod-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and the guild
// config JSON.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("GUILD_CONFIG_PATH", "data/guild_config.json")

	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := viper.GetString("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	if viper.GetString("LOG_WEBHOOK_URL") == "" {
		log.Println("Warning: LOG_WEBHOOK_URL not set, ops logging will be disabled")
	}

	cfg := &model.Config{
		BotToken:         token,
		AppID:            appID,
		DataDir:          viper.GetString("DATA_DIR"),
		LogWebhookURL:    viper.GetString("LOG_WEBHOOK_URL"),
		DeveloperUserIDs: splitIDs(viper.GetString("DEVELOPER_USER_IDS")),
		GuildConfigs:     make(map[string]model.GuildConfig),
	}

	if err := loadGuildConfigs(viper.GetString("GUILD_CONFIG_PATH"), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func loadGuildConfigs(path string, cfg *model.Config) error {
	configFile, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: Guild config not found at %s, no guilds will be served.", path)
			return nil
		}
		return fmt.Errorf("failed to read guild config %s: %w", path, err)
	}

	var guilds []model.GuildConfig
	if err := json.Unmarshal(configFile, &guilds); err != nil {
		return fmt.Errorf("failed to parse guild config %s: %w", path, err)
	}
	for _, guild := range guilds {
		if guild.GuildID == "" {
			log.Printf("Warning: Skipping guild config entry without guild_id (%q)", guild.Name)
			continue
		}
		cfg.GuildConfigs[guild.GuildID] = guild
	}
	return nil
}
