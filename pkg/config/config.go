// Package config loads the service configuration from an optional YAML file
// and the environment. File values are overridden by environment variables;
// defaults fill whatever neither provides.
package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/kart-io/bookmarkhub/observability"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
	"github.com/kart-io/bookmarkhub/pkg/messaging"
	"github.com/kart-io/bookmarkhub/pkg/messaging/discord"
	"github.com/kart-io/bookmarkhub/pkg/messaging/matrix"
	"github.com/kart-io/bookmarkhub/pkg/messaging/signal"
	"github.com/kart-io/bookmarkhub/pkg/messaging/whatsapp"
	"github.com/kart-io/bookmarkhub/pkg/sink"
)

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig         `json:"server" yaml:"server"`
	Log       LogConfig            `json:"log" yaml:"log"`
	Telemetry observability.Config `json:"telemetry" yaml:"telemetry"`
	Sink      sink.Config          `json:"sink" yaml:"sink"`
	Messaging MessagingConfig      `json:"messaging" yaml:"messaging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" env:"SERVER_ADDR" env-default:"127.0.0.1:5601"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	JSON  bool   `json:"json" yaml:"json" env:"LOG_JSON"`
}

// MessagingConfig holds the notification fan-out settings: a master switch,
// one config fragment per client variant, and the category routing rules.
type MessagingConfig struct {
	Enabled         bool            `json:"enabled" yaml:"enabled" env:"MESSAGING_ENABLED"`
	Clients         ClientsConfig   `json:"clients" yaml:"clients"`
	CategoryRouting messaging.Table `json:"category_routing" yaml:"category_routing"`
}

// ClientsConfig groups the per-variant client fragments.
type ClientsConfig struct {
	Matrix   matrix.Config   `json:"matrix" yaml:"matrix"`
	Signal   signal.Config   `json:"signal" yaml:"signal"`
	Discord  discord.Config  `json:"discord" yaml:"discord"`
	WhatsApp whatsapp.Config `json:"whatsapp" yaml:"whatsapp"`
}

// Load reads the configuration. A missing file is not an error; the
// environment and defaults then stand alone. An unreadable or malformed
// file is.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, errors.Wrap(err, errors.CodeConfigLoad, "read config file")
			}
			return &cfg, nil
		case !os.IsNotExist(err):
			return nil, errors.Wrap(err, errors.CodeConfigLoad, "stat config file")
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "read environment")
	}
	return &cfg, nil
}

// Builders returns one registry builder per known client variant, or nothing
// when messaging is switched off entirely.
func (c *MessagingConfig) Builders(log logger.Logger) []messaging.Builder {
	if !c.Enabled {
		return nil
	}

	mx := c.Clients.Matrix
	sg := c.Clients.Signal
	dc := c.Clients.Discord
	wa := c.Clients.WhatsApp

	return []messaging.Builder{
		{
			Name:     messaging.NameMatrix,
			Enabled:  mx.Enabled,
			Validate: mx.Validate,
			New:      func() (messaging.Client, error) { return matrix.New(mx, log), nil },
		},
		{
			Name:     messaging.NameSignal,
			Enabled:  sg.Enabled,
			Validate: sg.Validate,
			New:      func() (messaging.Client, error) { return signal.New(sg, log), nil },
		},
		{
			Name:     messaging.NameDiscord,
			Enabled:  dc.Enabled,
			Validate: dc.Validate,
			New:      func() (messaging.Client, error) { return discord.New(dc, log), nil },
		},
		{
			Name:     messaging.NameWhatsApp,
			Enabled:  wa.Enabled,
			Validate: wa.Validate,
			New:      func() (messaging.Client, error) { return whatsapp.New(wa, log), nil },
		},
	}
}
