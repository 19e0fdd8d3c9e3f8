package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

const (
	defaultRedisAddr   = "localhost:6379"
	defaultRedisStream = "bookmarkhub:events"
	defaultRedisMaxLen = 10000
)

// RedisConfig holds settings for the Redis stream event store.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" env:"SINK_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `json:"password" yaml:"password" env:"SINK_REDIS_PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"SINK_REDIS_DB"`
	Stream   string `json:"stream" yaml:"stream" env:"SINK_REDIS_STREAM" env-default:"bookmarkhub:events"`
	MaxLen   int64  `json:"max_len" yaml:"max_len"`
}

// Redis appends bookmark events to a capped Redis stream.
type Redis struct {
	cfg    RedisConfig
	client *redis.Client
	log    logger.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg RedisConfig, log logger.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		cfg.Addr = defaultRedisAddr
	}
	if cfg.Stream == "" {
		cfg.Stream = defaultRedisStream
	}
	if cfg.MaxLen <= 0 {
		cfg.MaxLen = defaultRedisMaxLen
	}
	if log == nil {
		log = logger.Discard
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	log.Info("redis sink ready", "addr", cfg.Addr, "stream", cfg.Stream)
	return &Redis{cfg: cfg, client: client, log: log}, nil
}

// Store appends one bookmark event to the stream.
func (s *Redis) Store(ctx context.Context, bm bookmark.Bookmark) error {
	data, err := json.Marshal(bm)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: s.cfg.Stream,
		MaxLen: s.cfg.MaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"stored_at": time.Now().Unix(),
		},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Wrap(err, errors.CodeSinkFailed, "stream append failed")
	}
	return nil
}

// Close closes the Redis connection.
func (s *Redis) Close() error { return s.client.Close() }
