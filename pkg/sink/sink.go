// Package sink persists accepted bookmark events. The ingestion layer writes
// every bookmark to the configured sink before notifications fan out.
package sink

import (
	"context"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

// Backend names accepted by New.
const (
	BackendActivityWatch = "activitywatch"
	BackendRedis         = "redis"
	BackendSQLite        = "sqlite"
	BackendNone          = "none"
)

// Sink is the event store for accepted bookmarks.
type Sink interface {
	// Store persists one bookmark event.
	Store(ctx context.Context, bm bookmark.Bookmark) error

	// Close releases the sink's resources.
	Close() error
}

// Config selects and configures the event store backend.
type Config struct {
	Backend       string              `json:"backend" yaml:"backend" env:"SINK_BACKEND" env-default:"activitywatch"`
	ActivityWatch ActivityWatchConfig `json:"activitywatch" yaml:"activitywatch"`
	Redis         RedisConfig         `json:"redis" yaml:"redis"`
	SQLite        SQLiteConfig        `json:"sqlite" yaml:"sqlite"`
}

// New builds the configured sink backend. Backends that talk to external
// stores verify the connection here, so a broken sink fails the process at
// startup rather than on the first request.
func New(cfg Config, log logger.Logger) (Sink, error) {
	switch cfg.Backend {
	case BackendActivityWatch, "":
		return NewActivityWatch(cfg.ActivityWatch, log)
	case BackendRedis:
		return NewRedis(cfg.Redis, log)
	case BackendSQLite:
		return NewSQLite(cfg.SQLite, log)
	case BackendNone:
		return NewNone(), nil
	default:
		return nil, errors.Newf(errors.CodeConfigInvalid, "unknown sink backend: %s", cfg.Backend)
	}
}
