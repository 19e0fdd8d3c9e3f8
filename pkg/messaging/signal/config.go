// Package signal delivers bookmark notifications through a
// signal-cli-rest-api instance.
package signal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kart-io/bookmarkhub/pkg/messaging"
)

const defaultTimeout = 10 * time.Second

// Config holds the Signal client settings.
type Config struct {
	Enabled    bool                            `json:"enabled" yaml:"enabled"`
	APIURL     string                          `json:"api_url" yaml:"api_url"`
	Sender     string                          `json:"sender" yaml:"sender"`
	Recipients map[string]messaging.Recipients `json:"recipients" yaml:"recipients"`
	Template   string                          `json:"message_template" yaml:"message_template"`
	Timeout    time.Duration                   `json:"timeout" yaml:"timeout"`
}

// Validate checks the configuration and reports the first violation found.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required for Signal client")
	}

	if c.Sender == "" {
		return fmt.Errorf("sender is required for Signal client")
	}
	if !messaging.ValidPhone(c.Sender) {
		return fmt.Errorf("sender must be a phone number starting with +: %s", c.Sender)
	}

	if c.Recipients == nil {
		return fmt.Errorf("recipients is required for Signal client")
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

// validGroupID accepts signal-cli group identifiers of the form
// "group.<base64 id>".
func validGroupID(id string) bool {
	return strings.HasPrefix(id, "group.") && len(id) > len("group.")
}

func sortedKeys(m map[string]messaging.Recipients) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
