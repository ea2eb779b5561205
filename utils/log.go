package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

type DiscordEmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type DiscordEmbed struct {
	Title  string              `json:"title"`
	Color  int                 `json:"color"`
	Fields []DiscordEmbedField `json:"fields"`
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// Discord webhooks tolerate roughly 30 requests per minute; burst a few,
// then pace. Ops logs beyond the budget wait rather than drop.
var webhookLimiter = rate.NewLimiter(rate.Limit(0.5), 5)

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

func sendLog(webhookURL string, level LogLevel, module, operation, extraInfo string) error {
	if err := webhookLimiter.Wait(context.Background()); err != nil {
		return err
	}

	embed := DiscordEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []DiscordEmbedField{
			{Name: "Module", Value: module},
			{Name: "Operation", Value: operation},
			{Name: "Details", Value: extraInfo},
		},
	}

	jsonPayload, err := json.Marshal(DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}

	return nil
}

func LogInfo(webhookURL, module, operation, extraInfo string) error {
	return sendLog(webhookURL, Info, module, operation, extraInfo)
}

func LogWarn(webhookURL, module, operation, extraInfo string) error {
	return sendLog(webhookURL, Warn, module, operation, extraInfo)
}

func LogError(webhookURL, module, operation, extraInfo string) error {
	return sendLog(webhookURL, Error, module, operation, extraInfo)
}
