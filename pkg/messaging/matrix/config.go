// Package matrix delivers bookmark notifications to Matrix rooms over the
// client-server API.
package matrix

import (
	"fmt"
	"time"
)

const defaultTimeout = 5 * time.Second

// Config holds the Matrix client settings. Authentication uses either a
// static access token or a user id and password pair; with the latter the
// client logs in lazily and caches the session token across sends.
type Config struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Homeserver  string            `json:"homeserver" yaml:"homeserver"`
	UserID      string            `json:"user_id" yaml:"user_id"`
	Password    string            `json:"password" yaml:"password"`
	AccessToken string            `json:"access_token" yaml:"access_token"`
	Rooms       map[string]string `json:"rooms" yaml:"rooms"`
	Template    string            `json:"message_template" yaml:"message_template"`
	Timeout     time.Duration     `json:"timeout" yaml:"timeout"`
}

// Validate checks the configuration and reports the first violation found.
func (c *Config) Validate() error {
	if c.Homeserver == "" {
		return fmt.Errorf("homeserver is required for Matrix client")
	}

	if c.AccessToken == "" && (c.UserID == "" || c.Password == "") {
		return fmt.Errorf("Matrix client requires access_token or both user_id and password")
	}

	if c.Rooms == nil {
		return fmt.Errorf("rooms is required for Matrix client")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	return nil
}
