package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
	"github.com/kart-io/bookmarkhub/pkg/messaging"
)

// Client posts bookmark notifications to per-category Discord webhooks,
// falling back to the "default" webhook when a category has none.
type Client struct {
	cfg        Config
	log        logger.Logger
	httpClient *http.Client
}

// New creates a Discord client from a validated configuration, applying
// defaults for the template and timeout.
func New(cfg Config, log logger.Logger) *Client {
	if cfg.Template == "" {
		cfg.Template = messaging.DefaultTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Discard
	}
	return &Client{
		cfg:        cfg,
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the routing identifier for this client.
func (c *Client) Name() string { return messaging.NameDiscord }

// Enabled reports whether the client takes part in dispatch.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

type sendRequest struct {
	Content string `json:"content"`
}

// Send delivers one bookmark notification. It never returns an error: every
// failure path is logged and reported as false.
func (c *Client) Send(ctx context.Context, bm bookmark.Bookmark) bool {
	if !c.cfg.Enabled {
		c.log.Debug("discord client disabled, skipping send")
		return false
	}

	webhook := c.webhookFor(bm.Category)
	if webhook == "" {
		c.log.Warn("no discord webhook configured for category", "category", bm.Category)
		return false
	}

	payload, err := json.Marshal(sendRequest{
		Content: messaging.FormatMessage(c.cfg.Template, bm),
	})
	if err != nil {
		c.log.Error("discord payload encoding failed", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("discord request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("discord send failed",
			"error", errors.Wrap(err, errors.CodeDeliveryFailed, "request error").WithClient(messaging.NameDiscord))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("discord send rejected",
			"status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return false
	}

	c.log.Info("discord message sent", "category", bm.Category)
	return true
}

// webhookFor resolves the webhook for a category, trying the category's own
// entry first and the default entry second.
func (c *Client) webhookFor(category string) string {
	if category != "" {
		if url, ok := c.cfg.WebhookURLs[category]; ok {
			return url
		}
	}
	return c.cfg.WebhookURLs[DefaultKey]
}
