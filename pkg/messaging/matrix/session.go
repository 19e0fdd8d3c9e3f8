package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/messaging"
)

// session caches the access token obtained from password login. Concurrent
// dispatches may race a renewal; the worst case is a redundant login, never
// a corrupt token.
type session struct {
	mu    sync.Mutex
	token string
}

// passwordAuth reports whether the client logs in with user credentials
// rather than a static token.
func (c *Client) passwordAuth() bool { return c.cfg.AccessToken == "" }

// sessionToken returns the token for the next request, logging in lazily
// when password auth is configured and no session is cached.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	if !c.passwordAuth() {
		return c.cfg.AccessToken, nil
	}

	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	if c.session.token != "" {
		return c.session.token, nil
	}
	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	c.session.token = token
	return token, nil
}

// dropSession forgets a cached token observed as expired. The compare keeps
// one dispatch from discarding a token another dispatch renewed in between.
func (c *Client) dropSession(seen string) {
	c.session.mu.Lock()
	if c.session.token == seen {
		c.session.token = ""
	}
	c.session.mu.Unlock()
}

type loginRequest struct {
	Type       string          `json:"type"`
	Identifier loginIdentifier `json:"identifier"`
	Password   string          `json:"password"`
}

type loginIdentifier struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// login performs a password login against the homeserver and returns the
// granted access token.
func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(loginRequest{
		Type:       "m.login.password",
		Identifier: loginIdentifier{Type: "m.id.user", User: c.cfg.UserID},
		Password:   c.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.cfg.Homeserver, "/") + "/_matrix/client/v3/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Newf(errors.CodeDeliveryFailed, "login returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body))).WithClient(messaging.NameMatrix)
	}

	var granted loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&granted); err != nil {
		return "", fmt.Errorf("decoding login response: %w", err)
	}
	if granted.AccessToken == "" {
		return "", fmt.Errorf("login response missing access_token")
	}
	return granted.AccessToken, nil
}
