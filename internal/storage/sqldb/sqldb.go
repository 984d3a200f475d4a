// Package sqldb implements the schema registry on top of database/sql. The
// sqlite, mssql and mysql backends differ only in their Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xaviermathew/Aragog/internal/schema"
	"github.com/xaviermathew/Aragog/internal/storage"
)

// Dialect supplies the registry statements for one SQL flavor. Each function
// receives the registry table name.
type Dialect struct {
	Name string
	// CreateRegistry must be idempotent.
	CreateRegistry func(table string) string
	// Upsert takes name, fingerprint, body, updated_at.
	Upsert func(table string) string
	// Select takes name and yields fingerprint, body, updated_at.
	Select func(table string) string
}

// Repository stores schemas in a single registry table.
type Repository struct {
	db    *sql.DB
	d     Dialect
	table string

	mu    sync.Mutex
	ready bool
}

// New wraps an open database handle.
func New(db *sql.DB, d Dialect, table string) *Repository {
	if table == "" {
		table = storage.DefaultSchemaTable
	}
	return &Repository{db: db, d: d, table: table}
}

// DB exposes the underlying handle.
func (r *Repository) DB() *sql.DB { return r.db }

// Exec runs a raw statement. Blank input is a no-op.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("%s: exec: %w", r.d.Name, err)
	}
	return nil
}

func (r *Repository) ensureRegistry(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}
	if err := r.Exec(ctx, r.d.CreateRegistry(r.table)); err != nil {
		return err
	}
	r.ready = true
	return nil
}

// SaveSchema upserts rec keyed by name.
func (r *Repository) SaveSchema(ctx context.Context, rec storage.SchemaRecord) error {
	if rec.Name == "" {
		return fmt.Errorf("%s: save schema: empty name", r.d.Name)
	}
	if rec.Schema == nil {
		return fmt.Errorf("%s: save schema %q: nil schema", r.d.Name, rec.Name)
	}
	if err := r.ensureRegistry(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(rec.Schema)
	if err != nil {
		return fmt.Errorf("%s: encode schema %q: %w", r.d.Name, rec.Name, err)
	}
	at := rec.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err = r.db.ExecContext(ctx, r.d.Upsert(r.table),
		rec.Name, rec.Fingerprint, string(body), at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%s: save schema %q: %w", r.d.Name, rec.Name, err)
	}
	return nil
}

// LoadSchema fetches the record stored under name.
func (r *Repository) LoadSchema(ctx context.Context, name string) (storage.SchemaRecord, error) {
	if err := r.ensureRegistry(ctx); err != nil {
		return storage.SchemaRecord{}, err
	}
	var fp, body, at string
	err := r.db.QueryRowContext(ctx, r.d.Select(r.table), name).Scan(&fp, &body, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SchemaRecord{}, fmt.Errorf("%s: %q: %w", r.d.Name, name, storage.ErrNotFound)
	}
	if err != nil {
		return storage.SchemaRecord{}, fmt.Errorf("%s: load schema %q: %w", r.d.Name, name, err)
	}
	return decodeRecord(name, fp, body, at)
}

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

func decodeRecord(name, fp, body, at string) (storage.SchemaRecord, error) {
	var s schema.Schema
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return storage.SchemaRecord{}, fmt.Errorf("decode schema %q: %w", name, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return storage.SchemaRecord{}, fmt.Errorf("decode schema %q: updated_at: %w", name, err)
	}
	return storage.SchemaRecord{Name: name, Fingerprint: fp, Schema: &s, UpdatedAt: ts}, nil
}
