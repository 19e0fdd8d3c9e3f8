package signal

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

// Client sends bookmark notifications via signal-cli-rest-api's v2 send
// endpoint. One POST carries the message to every target resolved for the
// bookmark's category, individuals and groups alike.
type Client struct {
	cfg        Config
	log        logger.Logger
	httpClient *http.Client
}

// New creates a Signal client from a validated configuration, applying
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
func (c *Client) Name() string { return messaging.NameSignal }

// Enabled reports whether the client takes part in dispatch.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

type sendRequest struct {
	Message    string   `json:"message"`
	Number     string   `json:"number"`
	Recipients []string `json:"recipients"`
}

// Send delivers one bookmark notification. It never returns an error: every
// failure path is logged and reported as false.
func (c *Client) Send(ctx context.Context, bm bookmark.Bookmark) bool {
	if !c.cfg.Enabled {
		c.log.Debug("signal client disabled, skipping send")
		return false
	}

	targets := c.targetsFor(bm.Category)
	if len(targets) == 0 {
		c.log.Warn("no signal recipients configured for category", "category", bm.Category)
		return false
	}

	payload, err := json.Marshal(sendRequest{
		Message:    messaging.FormatMessage(c.cfg.Template, bm),
		Number:     c.cfg.Sender,
		Recipients: targets,
	})
	if err != nil {
		c.log.Error("signal payload encoding failed", "error", err)
		return false
	}

	endpoint := strings.TrimRight(c.cfg.APIURL, "/") + "/v2/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		c.log.Error("signal request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("signal send failed",
			"error", errors.Wrap(err, errors.CodeDeliveryFailed, "request error").WithClient(messaging.NameSignal))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.log.Error("signal send rejected",
			"status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return false
	}

	c.log.Info("signal message sent",
		"category", bm.Category, "recipients", len(targets))
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
