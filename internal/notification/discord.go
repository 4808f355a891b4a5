package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Vibencrypt/COD492/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []DiscordField `json:"fields,omitempty"`
}

type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

const (
	colorRed   = 16711680
	colorGreen = 65280
)

var client = &http.Client{Timeout: 15 * time.Second}

func SendDiscordErrorNotification(errorMessage string) error {
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Flood mapping failed",
				Description: fmt.Sprintf("An error occurred: %s", errorMessage),
				Color:       colorRed,
			},
		},
	}
	return send(context.Background(), properties.DiscordErrorNotificationUrl(), message)
}

func SendDiscordSuccessNotification(successMessage string) error {
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "✅ Flood mapping finished",
				Description: successMessage,
				Color:       colorGreen,
			},
		},
	}
	return send(context.Background(), properties.DiscordSuccessNotificationUrl(), message)
}

// FloodSummary reports a finished detection run with its thresholds.
type FloodSummary struct {
	RunID         string
	Region        string
	PreDate       string
	PostDate      string
	PreThreshold  float64
	PostThreshold float64
	FloodedPixels int
	FloodedKm2    float64
}

func SendFloodSummary(ctx context.Context, s FloodSummary) error {
	message := DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🌊 Flood extent ready",
				Description: fmt.Sprintf("Region **%s**, %s → %s (run %s)", s.Region, s.PreDate, s.PostDate, s.RunID),
				Color:       colorGreen,
				Fields: []DiscordField{
					{Name: "Pre threshold", Value: fmt.Sprintf("%.2f dB", s.PreThreshold), Inline: true},
					{Name: "Post threshold", Value: fmt.Sprintf("%.2f dB", s.PostThreshold), Inline: true},
					{Name: "Flooded", Value: fmt.Sprintf("%d px (%.2f km²)", s.FloodedPixels, s.FloodedKm2)},
				},
			},
		},
	}
	return send(ctx, properties.DiscordSuccessNotificationUrl(), message)
}

func send(ctx context.Context, url string, message DiscordMessage) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}
