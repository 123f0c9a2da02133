package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slotify-backend/config"
)

// Message is one outbound email. Delivery happens on an external mail API;
// this client only hands the message over.
type Message struct {
	To        []string `json:"to"`
	Subject   string   `json:"subject,omitempty"`
	PlainText string   `json:"email_plain_text,omitempty"`
	HTMLText  string   `json:"email_html_text,omitempty"`
	FromName  string   `json:"from_name,omitempty"`
}

// Client talks to the external send-email endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	senderName string
	client     *http.Client
}

// NewClient builds a mail client from config. Returns nil when no base URL is
// configured, which disables the email channel.
func NewClient(cfg *config.MailerConfig) *Client {
	if cfg == nil || cfg.BaseURL == "" {
		return nil
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/api/v1/send-email",
		apiKey:     cfg.APIKey,
		senderName: cfg.SenderName,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Send posts the message to the mail API.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	if msg.FromName == "" {
		msg.FromName = c.senderName
	}

	jsonBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
