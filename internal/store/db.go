package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. The driver is pure Go, so a single binary carries its own
// storage.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("store.open", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// without a retry loop.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("store.close.failed", "error", err)
		return
	}
	logger.Info("store.closed")
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS scan_sessions (
	id         TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	processed  INTEGER NOT NULL DEFAULT 0,
	failed     INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS receipts (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES scan_sessions(id) ON DELETE CASCADE,
	filename   TEXT NOT NULL,
	vendor     TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT '',
	scan_date  TEXT NOT NULL DEFAULT '',
	inferred   INTEGER NOT NULL DEFAULT 0,
	total      REAL,
	currency   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS receipts_session_idx ON receipts(session_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
