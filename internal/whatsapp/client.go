package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/config"
)

// Client talks to the WhatsApp Cloud API. All calls are sequential,
// single-attempt, and bounded by the configured timeouts.
type Client struct {
	cfg       config.WhatsAppConfig
	sendHTTP  *http.Client
	mediaHTTP *http.Client
	logger    *zap.Logger
}

// NewClient builds the Cloud API client.
func NewClient(cfg config.WhatsAppConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:       cfg,
		sendHTTP:  &http.Client{Timeout: cfg.SendTimeout()},
		mediaHTTP: &http.Client{Timeout: cfg.MediaTimeout()},
		logger:    logger,
	}
}

// SendText delivers a plain text message to a recipient.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.APIBaseURL, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.sendHTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// MediaURL resolves a media id to its short-lived download URL.
func (c *Client) MediaURL(ctx context.Context, mediaID string) (string, error) {
	url := fmt.Sprintf("%s/%s", c.cfg.APIBaseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.mediaHTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("whatsapp media lookup: status %d", resp.StatusCode)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("whatsapp media lookup: empty url for %s", mediaID)
	}
	return out.URL, nil
}

// DownloadMedia fetches the media binary from a resolved URL.
func (c *Client) DownloadMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.mediaHTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("whatsapp media download: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// VerifyToken returns the configured webhook verify token.
func (c *Client) VerifyToken() string {
	return c.cfg.WebhookVerifyToken
}
