package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	_ "modernc.org/sqlite"
)

// Open returns the process-wide SQLite handle. A single connection serialises
// writers, which also keeps an in-transaction rewrite invisible to readers
// until it commits.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, oops.With("database_path", path, "context", "failed to create db directory").Wrap(err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.With("database_path", path, "context", "failed to open database").Wrap(err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, oops.With("database_path", path, "context", "failed to ping database").Wrap(err)
	}

	return db, nil
}
