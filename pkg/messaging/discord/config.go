// Package discord delivers bookmark notifications through Discord
// incoming webhooks.
package discord

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 5 * time.Second

// DefaultKey is the webhook map entry used when a category has no
// dedicated webhook.
const DefaultKey = "default"

// Config holds the Discord client settings.
type Config struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	WebhookURLs map[string]string `json:"webhook_urls" yaml:"webhook_urls"`
	Template    string            `json:"message_template" yaml:"message_template"`
	Timeout     time.Duration     `json:"timeout" yaml:"timeout"`
}

// Validate checks the configuration and reports the first violation found.
// An empty webhook map is structurally valid; it just routes nothing.
func (c *Config) Validate() error {
	if c.WebhookURLs == nil {
		return fmt.Errorf("webhook_urls is required for Discord client")
	}
	for _, category := range sortedKeys(c.WebhookURLs) {
		if !validWebhookURL(c.WebhookURLs[category]) {
			return fmt.Errorf("invalid Discord webhook URL for category %q: %s", category, c.WebhookURLs[category])
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// validWebhookURL accepts https webhook URLs on discord.com or
// discordapp.com of the form /api/webhooks/{id}/{token}, where id is an
// all-digit snowflake of at least 17 characters and token is at least 10
// characters. Extra path segments after the token are allowed.
func validWebhookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return false
	}
	if u.Host != "discord.com" && u.Host != "discordapp.com" {
		return false
	}
	rest, ok := strings.CutPrefix(u.Path, "/api/webhooks/")
	if !ok {
		return false
	}
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return false
	}
	return validSnowflake(parts[0]) && len(parts[1]) >= 10
}

// validSnowflake reports whether s looks like a Discord snowflake id.
func validSnowflake(s string) bool {
	if len(s) < 17 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
