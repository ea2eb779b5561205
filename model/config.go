package model

// GuildConfig names the channels and roles one guild's moderation output
// uses. Loaded from data/guild_config.json.
type GuildConfig struct {
	Name            string   `json:"name"`
	GuildID         string   `json:"guild_id"`
	LogChannelID    string   `json:"log_channel_id"`
	NotifyChannelID string   `json:"notify_channel_id"`
	AdminRoleIDs    []string `json:"admin_role_ids"`
}

// Config holds the application configuration.
type Config struct {
	BotToken         string
	AppID            string
	DataDir          string
	LogWebhookURL    string
	DeveloperUserIDs []string
	GuildConfigs     map[string]GuildConfig
}
