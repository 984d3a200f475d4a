// Package mssql stores inferred schemas in Microsoft SQL Server.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	msddl "github.com/xaviermathew/Aragog/internal/storage/mssql/ddl"
	"github.com/xaviermathew/Aragog/internal/storage/sqldb"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN   string
	Table string
}

// Repository is an MSSQL-backed storage.Repository.
type Repository struct {
	*sqldb.Repository
}

var dialect = sqldb.Dialect{
	Name: "mssql",
	CreateRegistry: func(table string) string {
		t := msddl.QuoteFQN(table)
		return fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
  name NVARCHAR(255) NOT NULL PRIMARY KEY,
  fingerprint NVARCHAR(64) NOT NULL,
  body NVARCHAR(MAX) NOT NULL,
  updated_at NVARCHAR(40) NOT NULL
);`, t, t)
	},
	Upsert: func(table string) string {
		return fmt.Sprintf(`MERGE %s WITH (HOLDLOCK) AS t
USING (SELECT @p1 AS name, @p2 AS fingerprint, @p3 AS body, @p4 AS updated_at) AS s
ON t.name = s.name
WHEN MATCHED THEN UPDATE SET fingerprint = s.fingerprint, body = s.body, updated_at = s.updated_at
WHEN NOT MATCHED THEN INSERT (name, fingerprint, body, updated_at) VALUES (s.name, s.fingerprint, s.body, s.updated_at);`,
			msddl.QuoteFQN(table))
	},
	Select: func(table string) string {
		return fmt.Sprintf(`SELECT fingerprint, body, updated_at FROM %s WHERE name = @p1`, msddl.QuoteFQN(table))
	},
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	r := &Repository{Repository: sqldb.New(db, dialect, cfg.Table)}
	return r, r.Repository.Close, nil
}
