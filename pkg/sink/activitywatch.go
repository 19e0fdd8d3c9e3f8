package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

const (
	defaultAWURL     = "http://localhost:5600"
	defaultAWTimeout = 5 * time.Second
	bucketPrefix     = "aw-bookmark_"
	awClientName     = "aw-bookmark"
	awEventType      = "bookmark"
)

// ActivityWatchConfig holds settings for the ActivityWatch event store.
type ActivityWatchConfig struct {
	URL     string        `json:"url" yaml:"url" env:"SINK_AW_URL" env-default:"http://localhost:5600"`
	Bucket  string        `json:"bucket" yaml:"bucket" env:"SINK_AW_BUCKET"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ActivityWatch writes bookmark events into an aw-server bucket named
// after the host, one event per stored bookmark.
type ActivityWatch struct {
	cfg        ActivityWatchConfig
	bucket     string
	hostname   string
	log        logger.Logger
	httpClient *http.Client
}

type awBucket struct {
	Client   string `json:"client"`
	Type     string `json:"type"`
	Hostname string `json:"hostname"`
}

type awEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	Duration  float64           `json:"duration"`
	Data      bookmark.Bookmark `json:"data"`
}

// NewActivityWatch connects to aw-server and ensures the bookmark bucket
// exists. The bucket name defaults to "aw-bookmark_<hostname>".
func NewActivityWatch(cfg ActivityWatchConfig, log logger.Logger) (*ActivityWatch, error) {
	if cfg.URL == "" {
		cfg.URL = defaultAWURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAWTimeout
	}
	if log == nil {
		log = logger.Discard
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = bucketPrefix + hostname
	}

	s := &ActivityWatch{
		cfg:        cfg,
		bucket:     bucket,
		hostname:   hostname,
		log:        log,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	s.log.Info("activitywatch sink ready", "bucket", bucket, "url", cfg.URL)
	return s, nil
}

// ensureBucket creates the event bucket. aw-server answers 304 when the
// bucket already exists, which counts as success.
func (s *ActivityWatch) ensureBucket(ctx context.Context) error {
	payload, err := json.Marshal(awBucket{
		Client:   awClientName,
		Type:     awEventType,
		Hostname: s.hostname,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/api/0/buckets/%s",
		strings.TrimRight(s.cfg.URL, "/"), url.PathEscape(s.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("activitywatch unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return errors.Newf(errors.CodeSinkFailed, "bucket creation returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Store appends one bookmark event to the bucket.
func (s *ActivityWatch) Store(ctx context.Context, bm bookmark.Bookmark) error {
	payload, err := json.Marshal([]awEvent{{
		Timestamp: time.Now().UTC(),
		Duration:  0,
		Data:      bm,
	}})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/api/0/buckets/%s/events",
		strings.TrimRight(s.cfg.URL, "/"), url.PathEscape(s.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeSinkFailed, "event insert failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return errors.Newf(errors.CodeSinkFailed, "event insert returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Close is a no-op; the sink holds no connection state.
func (s *ActivityWatch) Close() error { return nil }
