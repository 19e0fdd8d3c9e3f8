package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.db")
	s, err := NewSQLite(SQLiteConfig{Path: path}, logger.Discard)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Store(ctx, bookmark.Bookmark{
		URL: "https://e.com", Title: "Hi", Category: "work",
	}))
	require.NoError(t, s.Store(ctx, bookmark.Bookmark{
		URL: "https://e.com/2", Title: "Again",
	}))

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM bookmarks").Scan(&count))
	assert.Equal(t, 2, count)

	var url, title, category string
	require.NoError(t, s.db.QueryRow(
		"SELECT url, title, category FROM bookmarks ORDER BY id LIMIT 1").
		Scan(&url, &title, &category))
	assert.Equal(t, "https://e.com", url)
	assert.Equal(t, "Hi", title)
	assert.Equal(t, "work", category)
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	s, err := NewSQLite(SQLiteConfig{Path: path}, logger.Discard)
	require.NoError(t, err)
	require.NoError(t, s.Store(context.Background(), bookmark.Bookmark{URL: "https://e.com", Title: "Hi"}))
	require.NoError(t, s.Close())

	s, err = NewSQLite(SQLiteConfig{Path: path}, logger.Discard)
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM bookmarks").Scan(&count))
	assert.Equal(t, 1, count, "reopening must keep existing rows")
}
