// Package storage is the backend-agnostic entry point for persisting inferred
// schemas and creating tables that match them.
//
// Backends register a Factory (and a DDLBuilder) for their kind in init.
// Import internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xaviermathew/Aragog/internal/schema"
)

// DefaultSchemaTable is the registry table used when Config.Table is empty.
const DefaultSchemaTable = "aragog_schemas"

// ErrNotFound is returned by LoadSchema when no schema is stored under a name.
var ErrNotFound = errors.New("storage: schema not found")

// Config selects and configures a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "postgres" or "sqlite".
	Kind string
	// DSN is passed to the backend driver unchanged.
	DSN string
	// Table names the schema registry table.
	Table string
}

// TableName returns the registry table, falling back to DefaultSchemaTable.
func (c Config) TableName() string {
	if c.Table == "" {
		return DefaultSchemaTable
	}
	return c.Table
}

// SchemaRecord is one row of the schema registry.
type SchemaRecord struct {
	Name        string
	Fingerprint string
	Schema      *schema.Schema
	UpdatedAt   time.Time
}

// Repository is implemented by every backend.
type Repository interface {
	// Exec runs a raw statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// SaveSchema inserts or replaces the record stored under rec.Name.
	SaveSchema(ctx context.Context, rec SchemaRecord) error
	// LoadSchema returns the record stored under name or ErrNotFound.
	LoadSchema(ctx context.Context, name string) (SchemaRecord, error)
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. A later call for the same
// kind replaces the earlier factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered backend names in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}
