package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Embed colors per order status (Discord decimal RGB).
const (
	colorRequested = 0xF1C40F // yellow
	colorAccepted  = 0x2ECC71 // green
	colorCompleted = 0x3498DB // blue
	colorClosed    = 0xE74C3C // red: rejected or cancelled
)

// DiscordSender delivers order events to a Discord webhook as structured
// embeds.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender creates a DiscordSender for the given webhook URL.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title  string         `json:"title"`
	Color  int            `json:"color"`
	Fields []discordField `json:"fields"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Send posts the order event as one embed: headline as the title, status
// color on the side bar, and the order fields as inline embed fields.
func (d *DiscordSender) Send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(discordPayload{
		Embeds: []discordEmbed{discordOrderEmbed(ev)},
	})
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord: send request: %w", err)
	}
	defer resp.Body.Close()

	// Discord returns 204 No Content on success.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// discordOrderEmbed renders the order event as a Discord embed.
func discordOrderEmbed(ev Event) discordEmbed {
	fields := []discordField{
		{Name: "Order", Value: ev.OrderID, Inline: true},
		{Name: "Listing", Value: ev.ListingID, Inline: true},
		{Name: "Status", Value: ev.Status, Inline: true},
		{Name: "Buyer", Value: ev.BuyerID, Inline: true},
		{Name: "Seller", Value: ev.SellerID, Inline: true},
	}
	if ev.OfferPrice != "" {
		fields = append(fields, discordField{Name: "Price", Value: ev.OfferPrice, Inline: true})
	}
	return discordEmbed{
		Title:  ev.Title(),
		Color:  statusColor(ev.Status),
		Fields: fields,
	}
}

func statusColor(status string) int {
	switch status {
	case "ACCEPTED":
		return colorAccepted
	case "COMPLETED":
		return colorCompleted
	case "REJECTED", "CANCELLED":
		return colorClosed
	default:
		return colorRequested
	}
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}
