// Package mysql stores inferred schemas in MySQL or MariaDB.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	myddl "github.com/xaviermathew/Aragog/internal/storage/mysql/ddl"
	"github.com/xaviermathew/Aragog/internal/storage/sqldb"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN   string // go-sql-driver DSN, e.g. "user:pw@tcp(host:3306)/db"
	Table string
}

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

func quote(table string) string { return gddl.QuoteFQN(table, myddl.QuoteIdent) }

var dialect = sqldb.Dialect{
	Name: "mysql",
	CreateRegistry: func(table string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n"+
			"  name VARCHAR(255) NOT NULL PRIMARY KEY,\n"+
			"  fingerprint VARCHAR(64) NOT NULL,\n"+
			"  body LONGTEXT NOT NULL,\n"+
			"  updated_at VARCHAR(40) NOT NULL\n"+
			")", quote(table))
	},
	Upsert: func(table string) string {
		return fmt.Sprintf("INSERT INTO %s (name, fingerprint, body, updated_at) VALUES (?, ?, ?, ?)\n"+
			"ON DUPLICATE KEY UPDATE fingerprint = VALUES(fingerprint), body = VALUES(body), updated_at = VALUES(updated_at)",
			quote(table))
	},
	Select: func(table string) string {
		return fmt.Sprintf("SELECT fingerprint, body, updated_at FROM %s WHERE name = ?", quote(table))
	},
}

// NewRepository opens a MySQL pool and returns a Repository plus a Close
// function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxLifetime(3 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	r := &Repository{Repository: sqldb.New(db, dialect, cfg.Table)}
	return r, r.Repository.Close, nil
}
