// Package postgres stores inferred schemas in Postgres using pgx v5.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	gddl "github.com/xaviermathew/Aragog/internal/ddl"
	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // registry table, optionally schema-qualified
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	table string

	mu    sync.Mutex
	ready bool
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	table := cfg.Table
	if table == "" {
		table = storage.DefaultSchemaTable
	}
	return &Repository{pool: pool, table: gddl.QuoteFQN(table, gddl.DoubleQuote)}, pool.Close, nil
}

// Exec runs a raw statement. Blank input is a no-op.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

func (r *Repository) ensureRegistry(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}
	err := r.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  name TEXT PRIMARY KEY,
  fingerprint TEXT NOT NULL,
  body JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`, r.table))
	if err != nil {
		return err
	}
	r.ready = true
	return nil
}

// SaveSchema upserts rec keyed by name.
func (r *Repository) SaveSchema(ctx context.Context, rec storage.SchemaRecord) error {
	if rec.Name == "" {
		return fmt.Errorf("postgres: save schema: empty name")
	}
	if rec.Schema == nil {
		return fmt.Errorf("postgres: save schema %q: nil schema", rec.Name)
	}
	if err := r.ensureRegistry(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(rec.Schema)
	if err != nil {
		return fmt.Errorf("postgres: encode schema %q: %w", rec.Name, err)
	}
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	q := fmt.Sprintf(`INSERT INTO %s (name, fingerprint, body, updated_at) VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (name) DO UPDATE SET fingerprint = EXCLUDED.fingerprint, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`, r.table)
	if _, err := r.pool.Exec(ctx, q, rec.Name, rec.Fingerprint, string(body), at.UTC()); err != nil {
		return fmt.Errorf("postgres: save schema %q: %w", rec.Name, err)
	}
	return nil
}

// LoadSchema fetches the record stored under name.
func (r *Repository) LoadSchema(ctx context.Context, name string) (storage.SchemaRecord, error) {
	if err := r.ensureRegistry(ctx); err != nil {
		return storage.SchemaRecord{}, err
	}
	var (
		rec  = storage.SchemaRecord{Name: name}
		body string
	)
	q := fmt.Sprintf(`SELECT fingerprint, body::text, updated_at FROM %s WHERE name = $1`, r.table)
	err := r.pool.QueryRow(ctx, q, name).Scan(&rec.Fingerprint, &body, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.SchemaRecord{}, fmt.Errorf("postgres: %q: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return storage.SchemaRecord{}, fmt.Errorf("postgres: load schema %q: %w", name, err)
	}
	var s schema.Schema
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return storage.SchemaRecord{}, fmt.Errorf("postgres: decode schema %q: %w", name, err)
	}
	rec.Schema = &s
	return rec, nil
}
