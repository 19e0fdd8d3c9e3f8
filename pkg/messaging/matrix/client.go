package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
	"github.com/kart-io/bookmarkhub/pkg/messaging"
)

// Client sends bookmark notifications to per-category Matrix rooms as
// m.room.message events carrying both a plain and an HTML body.
type Client struct {
	cfg        Config
	log        logger.Logger
	httpClient *http.Client
	session    session
}

// New creates a Matrix client from a validated configuration, applying
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
func (c *Client) Name() string { return messaging.NameMatrix }

// Enabled reports whether the client takes part in dispatch.
func (c *Client) Enabled() bool { return c.cfg.Enabled }

type messageEvent struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format"`
	FormattedBody string `json:"formatted_body"`
}

// Send delivers one bookmark notification. On an expired session with
// password auth it re-authenticates and retries exactly once; with a static
// token a 401 is a final failure. It never returns an error: every failure
// path is logged and reported as false.
func (c *Client) Send(ctx context.Context, bm bookmark.Bookmark) bool {
	if !c.cfg.Enabled {
		c.log.Debug("matrix client disabled, skipping send")
		return false
	}

	room := c.roomFor(bm.Category)
	if room == "" {
		c.log.Warn("no matrix room configured for category", "category", bm.Category)
		return false
	}

	payload, err := json.Marshal(messageEvent{
		MsgType:       "m.text",
		Body:          messaging.FormatMessage(c.cfg.Template, bm),
		Format:        "org.matrix.custom.html",
		FormattedBody: formatHTML(bm),
	})
	if err != nil {
		c.log.Error("matrix payload encoding failed", "error", err)
		return false
	}

	token, err := c.sessionToken(ctx)
	if err != nil {
		c.log.Error("matrix login failed", "error", err)
		return false
	}

	status, body, err := c.postMessage(ctx, room, token, payload)
	if err != nil {
		c.log.Error("matrix send failed",
			"error", errors.Wrap(err, errors.CodeDeliveryFailed, "request error").WithClient(messaging.NameMatrix))
		return false
	}

	if status == http.StatusUnauthorized && c.passwordAuth() {
		c.log.Warn("matrix session expired, re-authenticating", "room", room)
		c.dropSession(token)
		if token, err = c.sessionToken(ctx); err != nil {
			c.log.Error("matrix re-login failed", "error", err)
			return false
		}
		if status, body, err = c.postMessage(ctx, room, token, payload); err != nil {
			c.log.Error("matrix send failed after re-login",
				"error", errors.Wrap(err, errors.CodeDeliveryFailed, "request error").WithClient(messaging.NameMatrix))
			return false
		}
	}

	if status < 200 || status >= 300 {
		c.log.Error("matrix send rejected",
			"status", status, "body", strings.TrimSpace(body),
			"error", errors.Newf(classifyStatus(status), "send returned %d", status).WithClient(messaging.NameMatrix))
		return false
	}

	c.log.Info("matrix message sent", "room", room, "category", bm.Category)
	return true
}

// postMessage posts the event to the room and returns the response status
// and body. A returned error means the request never completed.
func (c *Client) postMessage(ctx context.Context, room, token string, payload []byte) (int, string, error) {
	endpoint := fmt.Sprintf("%s/_matrix/client/v3/rooms/%s/send/m.room.message",
		strings.TrimRight(c.cfg.Homeserver, "/"), url.PathEscape(room))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), nil
}

// roomFor resolves the room for a category. An unset or unknown category
// resolves to nothing; there is no fallback entry.
func (c *Client) roomFor(category string) string {
	if category == "" {
		return ""
	}
	return c.cfg.Rooms[category]
}

// classifyStatus maps a non-2xx send response to an error code.
func classifyStatus(status int) errors.Code {
	if status == http.StatusUnauthorized {
		return errors.CodeAuthExpired
	}
	return errors.CodeDeliveryFailed
}

// formatHTML renders the rich-text body Matrix clients display in place of
// the plain one.
func formatHTML(bm bookmark.Bookmark) string {
	title := html.EscapeString(bm.Title)
	href := html.EscapeString(bm.URL)
	return fmt.Sprintf(`🔖 <strong>%s</strong><br/><a href="%s">%s</a>`, title, href, href)
}
