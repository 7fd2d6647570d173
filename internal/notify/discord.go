package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// Discord embed field limits.
const (
	maxTitle       = 256
	maxField       = 1024
	maxDescription = 2048

	colorGreen = 0x00ff00
	colorBlue  = 0x0099ff
)

// Discord sends listing notifications to Discord webhooks.
type Discord struct {
	client *http.Client
}

// NewDiscord returns a Discord sink with a shared HTTP client.
func NewDiscord() *Discord {
	return &Discord{client: &http.Client{Timeout: 15 * time.Second}}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp"`
	Footer      embedFooter  `json:"footer"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

// Dispatch posts a listing notification to the webhook URL.
func (d *Discord) Dispatch(ctx context.Context, webhookURL string, listing models.Listing, searchName, regionName string) error {
	e := embed{
		Title:       truncate(listing.Title, maxTitle),
		URL:         listing.URL,
		Description: truncate(listing.Description, maxDescription),
		Color:       colorGreen,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Footer:      embedFooter{Text: "Kijiji Bot"},
	}

	fields := []embedField{
		{Name: "💰 Price", Value: truncate(FormatPrice(listing.Price), maxField), Inline: true},
		{Name: "📍 Region", Value: truncate(regionName, maxTitle), Inline: true},
		{Name: "🔍 Search", Value: truncate(searchName, maxTitle), Inline: true},
	}
	for _, f := range fields {
		if f.Value != "" {
			e.Fields = append(e.Fields, f)
		}
	}

	payload := webhookPayload{Embeds: []embed{e}}
	// Discord requires at least one of content or embeds with content.
	if e.Title == "" || len(e.Fields) == 0 {
		payload.Content = fmt.Sprintf("New Kijiji listing: %s - %s", listing.Title, listing.URL)
	}

	return d.post(ctx, webhookURL, payload)
}

// TestWebhook sends a test message so the admin UI can verify a webhook works.
func (d *Discord) TestWebhook(ctx context.Context, webhookURL string) error {
	payload := webhookPayload{
		Embeds: []embed{{
			Title:       "🧪 Webhook Test",
			Description: "This is a test message from your Kijiji bot!",
			Color:       colorBlue,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Footer:      embedFooter{Text: "Kijiji Bot - Test"},
		}},
	}
	return d.post(ctx, webhookURL, payload)
}

func (d *Discord) post(ctx context.Context, webhookURL string, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, data)
	}
	return nil
}

// FormatPrice renders cents as "$X.YY", or a placeholder when the listing has
// no price.
func FormatPrice(price *int64) string {
	if price == nil {
		return "Price not specified"
	}
	return fmt.Sprintf("$%.2f", float64(*price)/100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
