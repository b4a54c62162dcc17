package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const discordUsername = "Uptime Monitor"

// webhookPath matches /api/webhooks/<id>/<token>.
var webhookPath = regexp.MustCompile(`/webhooks/(\d+)/(.+)`)

type Discord struct {
	Webhook string
	Client  *http.Client
}

// NewDiscord returns nil, nil for an empty webhook and ErrWebhookMalformed
// when the URL does not look like a Discord webhook.
func NewDiscord(webhook string) (*Discord, error) {
	if webhook == "" {
		return nil, nil
	}
	if !ValidDiscordWebhook(webhook) {
		return nil, fmt.Errorf("%w: expected https://discord.com/api/webhooks/<id>/<token>", ErrWebhookMalformed)
	}
	return &Discord{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func ValidDiscordWebhook(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return webhookPath.MatchString(u.Path)
}

type discordField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp"`
	Fields      []discordField `json:"fields"`
}

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Deliver(ctx context.Context, m Message) error {
	embed := discordEmbed{
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
		Timestamp:   m.Timestamp.Format(isoMillis),
		Fields:      make([]discordField, 0, len(m.Fields)),
	}
	for _, f := range m.Fields {
		embed.Fields = append(embed.Fields, discordField{Name: f.Name, Value: f.Value})
	}
	body, err := json.Marshal(discordPayload{Username: discordUsername, Embeds: []discordEmbed{embed}})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: discord status %d", ErrDeliveryFailed, resp.StatusCode)
	}
	return nil
}
