package punish

import (
	"mod-bot/model"

	"github.com/bwmarrin/discordgo"
)

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	opt, ok := opts[name]
	if !ok {
		return "", false
	}
	return opt.StringValue(), true
}

// parseSelector reads the shared id/latest options of edit and remove.
func parseSelector(opts map[string]*discordgo.ApplicationCommandInteractionDataOption) model.Selector {
	var sel model.Selector
	if opt, ok := opts["id"]; ok {
		sel.ID = opt.IntValue()
	}
	if opt, ok := opts["latest"]; ok {
		sel.Latest = opt.BoolValue()
	}
	return sel
}
