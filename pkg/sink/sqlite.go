package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kart-io/bookmarkhub/pkg/bookmark"
	"github.com/kart-io/bookmarkhub/pkg/errors"
	"github.com/kart-io/bookmarkhub/pkg/logger"
)

// SQLiteConfig holds settings for the local SQLite event store.
type SQLiteConfig struct {
	Path string `json:"path" yaml:"path" env:"SINK_SQLITE_PATH" env-default:"bookmarkhub.db"`
}

// SQLite stores bookmark events in a local database file.
type SQLite struct {
	db  *sql.DB
	log logger.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS bookmarks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	title TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_bookmarks_category ON bookmarks(category);
`

// NewSQLite opens the database file, creating it and its directory as
// needed, and applies the schema.
func NewSQLite(cfg SQLiteConfig, log logger.Logger) (*SQLite, error) {
	path := cfg.Path
	if path == "" {
		path = "bookmarkhub.db"
	}
	if log == nil {
		log = logger.Discard
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Info("sqlite sink ready", "path", path)
	return &SQLite{db: db, log: log}, nil
}

// Store inserts one bookmark event.
func (s *SQLite) Store(ctx context.Context, bm bookmark.Bookmark) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO bookmarks (url, title, category) VALUES (?, ?, ?)",
		bm.URL, bm.Title, bm.Category)
	if err != nil {
		return errors.Wrap(err, errors.CodeSinkFailed, "insert failed")
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
