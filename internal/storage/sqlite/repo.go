// Package sqlite stores inferred schemas in a SQLite database through the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/storage/sqldb"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a file path or URI, e.g. "aragog.db" or
	// "file:aragog.db?cache=shared". ":memory:" works for tests.
	DSN string
	// Table is the schema registry table.
	Table string
}

// Repository is a SQLite-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

var dialect = sqldb.Dialect{
	Name: "sqlite",
	CreateRegistry: func(table string) string {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  name TEXT PRIMARY KEY,
  fingerprint TEXT NOT NULL,
  body TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, quote(table))
	},
	Upsert: func(table string) string {
		return fmt.Sprintf(`INSERT INTO %s (name, fingerprint, body, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET fingerprint = excluded.fingerprint, body = excluded.body, updated_at = excluded.updated_at`, quote(table))
	},
	Select: func(table string) string {
		return fmt.Sprintf(`SELECT fingerprint, body, updated_at FROM %s WHERE name = ?`, quote(table))
	},
}

func quote(table string) string { return gddl.QuoteFQN(table, gddl.DoubleQuote) }

// NewRepository opens a SQLite database and returns a Repository plus a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Each pooled connection to ":memory:" would see its own database.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	r := &Repository{Repository: sqldb.New(db, dialect, cfg.Table)}
	return r, r.Repository.Close, nil
}
