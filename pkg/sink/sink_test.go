package sink

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

func TestNewNoneBackend(t *testing.T) {
	s, err := New(Config{Backend: BackendNone}, logger.Discard)
	require.NoError(t, err)
	assert.IsType(t, &None{}, s)
	assert.NoError(t, s.Store(context.Background(), bookmark.Bookmark{URL: "https://e.com", Title: "Hi"}))
	assert.NoError(t, s.Close())
}

func TestNewSQLiteBackend(t *testing.T) {
	s, err := New(Config{
		Backend: BackendSQLite,
		SQLite:  SQLiteConfig{Path: filepath.Join(t.TempDir(), "events.db")},
	}, logger.Discard)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	assert.NoError(t, s.Close())
}

func TestNewDefaultBackendIsActivityWatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s, err := New(Config{ActivityWatch: ActivityWatchConfig{URL: srv.URL}}, logger.Discard)
	require.NoError(t, err)
	assert.IsType(t, &ActivityWatch{}, s)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "kafka"}, logger.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sink backend")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestNewRedisUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	_, err = NewRedis(RedisConfig{Addr: addr}, logger.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection failed")
}
