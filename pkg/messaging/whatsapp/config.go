// Package whatsapp delivers bookmark notifications through a WhatsApp
// HTTP gateway (WAHA-style API).
package whatsapp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kart-io/bookmarkhub/pkg/messaging"
)

const (
	defaultTimeout = 10 * time.Second
	defaultSession = "default"
)

// Config holds the WhatsApp client settings.
type Config struct {
	Enabled    bool                            `json:"enabled" yaml:"enabled"`
	APIURL     string                          `json:"api_url" yaml:"api_url"`
	Session    string                          `json:"session" yaml:"session"`
	Recipients map[string]messaging.Recipients `json:"recipients" yaml:"recipients"`
	Template   string                          `json:"message_template" yaml:"message_template"`
	Timeout    time.Duration                   `json:"timeout" yaml:"timeout"`
}

// Validate checks the configuration and reports the first violation found.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required for WhatsApp client")
	}

	if c.Recipients == nil {
		return fmt.Errorf("recipients is required for WhatsApp client")
	}
	for _, category := range sortedKeys(c.Recipients) {
		entry := c.Recipients[category]
		for _, phone := range entry.Individuals {
			if !messaging.ValidPhone(phone) {
				return fmt.Errorf("invalid phone number in category %q: %s", category, phone)
			}
		}
		for _, group := range entry.Groups {
			if !validGroupID(group) {
				return fmt.Errorf("invalid group ID in category %q: %s", category, group)
			}
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}

// validGroupID accepts WhatsApp group JIDs, which carry a numeric id before
// the "@g.us" suffix.
func validGroupID(id string) bool {
	return strings.HasSuffix(id, "@g.us") && len(id) > 8
}

func sortedKeys(m map[string]messaging.Recipients) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
