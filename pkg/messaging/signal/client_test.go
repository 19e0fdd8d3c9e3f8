package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/logger"
	"github.com/kart-io/bookmarkhub/pkg/messaging"
)

func validConfig() Config {
	return Config{
		Enabled: true,
		APIURL:  "http://localhost:8080",
		Sender:  "+15550001111",
		Recipients: map[string]messaging.Recipients{
			"work": {
				Individuals: []string{"+15550002222"},
				Groups:      []string{"group.abc123"},
			},
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"valid groups only", func(c *Config) {
			c.Recipients = map[string]messaging.Recipients{
				"work": {Groups: []string{"group.abc123"}},
			}
		}, ""},
		{"empty category entry allowed", func(c *Config) {
			c.Recipients["spare"] = messaging.Recipients{}
		}, ""},
		{"missing api_url", func(c *Config) { c.APIURL = "" }, "api_url is required"},
		{"missing sender", func(c *Config) { c.Sender = "" }, "sender is required"},
		{"sender without plus", func(c *Config) { c.Sender = "15550001111" }, "phone number starting with +"},
		{"sender with letters", func(c *Config) { c.Sender = "+1555000abcd" }, "phone number starting with +"},
		{"sender too short", func(c *Config) { c.Sender = "+123456" }, "phone number starting with +"},
		{"missing recipients", func(c *Config) { c.Recipients = nil }, "recipients is required"},
		{"invalid recipient phone", func(c *Config) {
			c.Recipients["work"] = messaging.Recipients{Individuals: []string{"555"}}
		}, "invalid phone number"},
		{"group id without prefix", func(c *Config) {
			c.Recipients["work"] = messaging.Recipients{Groups: []string{"team.abc123"}}
		}, "invalid group ID"},
		{"group id prefix only", func(c *Config) {
			c.Recipients["work"] = messaging.Recipients{Groups: []string{"group."}}
		}, "invalid group ID"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSend(t *testing.T) {
	var hits atomic.Int32
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.APIURL = srv.URL + "/"
	client := New(cfg, logger.Discard)

	ok := client.Send(context.Background(), bookmark.Bookmark{
		URL:      "https://e.com",
		Title:    "Hi",
		Category: "work",
	})

	assert.True(t, ok)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "🔖 Hi\nhttps://e.com", got.Message)
	assert.Equal(t, "+15550001111", got.Number)
	assert.Equal(t, []string{"+15550002222", "group.abc123"}, got.Recipients)
}

func TestSendNoTargets(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.APIURL = srv.URL
	client := New(cfg, logger.Discard)

	assert.False(t, client.Send(context.Background(), bookmark.Bookmark{
		URL: "https://e.com", Title: "Hi", Category: "personal",
	}))
	assert.False(t, client.Send(context.Background(), bookmark.Bookmark{
		URL: "https://e.com", Title: "Hi",
	}))
	assert.Equal(t, int32(0), hits.Load(), "unroutable bookmarks must not reach the network")
}

func TestSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sender not registered", http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.APIURL = srv.URL
	client := New(cfg, logger.Discard)

	assert.False(t, client.Send(context.Background(), bookmark.Bookmark{
		URL: "https://e.com", Title: "Hi", Category: "work",
	}))
}

func TestSendConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := validConfig()
	cfg.APIURL = srv.URL
	srv.Close()

	client := New(cfg, logger.Discard)
	assert.False(t, client.Send(context.Background(), bookmark.Bookmark{
		URL: "https://e.com", Title: "Hi", Category: "work",
	}))
}

func TestSendDisabled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.Enabled = false
	cfg.APIURL = srv.URL
	client := New(cfg, logger.Discard)

	assert.False(t, client.Enabled())
	assert.False(t, client.Send(context.Background(), bookmark.Bookmark{
		URL: "https://e.com", Title: "Hi", Category: "work",
	}))
	assert.Equal(t, int32(0), hits.Load())
}

func TestClientDefaults(t *testing.T) {
	client := New(Config{}, nil)
	assert.Equal(t, messaging.NameSignal, client.Name())
	assert.Equal(t, messaging.DefaultTemplate, client.cfg.Template)
	assert.Equal(t, defaultTimeout, client.cfg.Timeout)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)
}
