package whatsapp

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

// Client sends bookmark notifications through a WhatsApp gateway's messages
// endpoint. One POST addresses every target resolved for the bookmark's
// category, individual numbers and group JIDs alike.
type Client struct {
	cfg        Config
	log        logger.Logger
	httpClient *http.Client
}

// New creates a WhatsApp client from a validated configuration, applying
// defaults for the session name, template and timeout.
func New(cfg Config, log logger.Logger) *Client {
	if cfg.Session == "" {
		cfg.Session = defaultSession
	}
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
func (c *Client) Name() string { return messaging.NameWhatsApp }

// Enabled reports whether the client takes part in dispatch.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

type sendRequest struct {
	Session    string   `json:"session"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

// Send delivers one bookmark notification. It never returns an error: every
// failure path is logged and reported as false.
func (c *Client) Send(ctx context.Context, bm bookmark.Bookmark) bool {
	if !c.cfg.Enabled {
		c.log.Debug("whatsapp client disabled, skipping send")
		return false
	}

	targets := c.targetsFor(bm.Category)
	if len(targets) == 0 {
		c.log.Warn("no whatsapp recipients configured for category", "category", bm.Category)
		return false
	}

	payload, err := json.Marshal(sendRequest{
		Session:    c.cfg.Session,
		Recipients: targets,
		Message:    messaging.FormatMessage(c.cfg.Template, bm),
	})
	if err != nil {
		c.log.Error("whatsapp payload encoding failed", "error", err)
		return false
	}

	endpoint := strings.TrimRight(c.cfg.APIURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("whatsapp request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("whatsapp send failed",
			"error", errors.Wrap(err, errors.CodeDeliveryFailed, "request error").WithClient(messaging.NameWhatsApp))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("whatsapp send rejected",
			"status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return false
	}

	c.log.Info("whatsapp message sent",
		"category", bm.Category, "recipients", len(targets), "session", c.cfg.Session)
	return true
}

// targetsFor merges the individuals and groups configured for category into
// one list. An unset or unknown category resolves to nothing; there is no
// fallback entry.
func (c *Client) targetsFor(category string) []string {
	if category == "" {
		return nil
	}
	entry, ok := c.cfg.Recipients[category]
	if !ok {
		return nil
	}
	return entry.Merged()
}
