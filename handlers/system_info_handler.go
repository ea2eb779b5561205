package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"
	"time"

	"mod-bot/bot"
	"mod-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemInfoHandler answers /mod-status with process and database
// diagnostics.
func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	if err := utils.DeferResponse(s, i, true); err != nil {
		log.Printf("Failed to defer interaction: %v", err)
		return
	}

	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	var cpuLoad float64
	if len(cpuPercent) > 0 {
		cpuLoad = cpuPercent[0]
	}

	dbFiles, err := filepath.Glob(filepath.Join(b.Config.DataDir, "*.db"))
	if err != nil {
		log.Printf("Error listing guild databases: %v", err)
	}
	var totalDBSize int64
	for _, file := range dbFiles {
		totalDBSize += utils.FileSize(file)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Bot status",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Guilds served", Value: fmt.Sprintf("%d", len(b.Config.GuildConfigs)), Inline: true},
			{Name: "Guild databases", Value: fmt.Sprintf("%d (%.1f MB)", len(dbFiles), float64(totalDBSize)/1024/1024), Inline: true},
			{Name: "Go routines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "CPU", Value: fmt.Sprintf("%d cores, %.1f%%", cpuCount, cpuLoad), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.1f%% of %.1f GB", vm.UsedPercent, float64(vm.Total)/1024/1024/1024), Inline: true},
			{Name: "Host uptime", Value: (time.Duration(hostInfo.Uptime) * time.Second).String(), Inline: true},
		},
	}
	utils.SendFollowUpEmbed(s, i.Interaction, embed)
}
