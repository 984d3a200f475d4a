package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaviermathew/Aragog/internal/schema"
)

// DDLBuilder renders a CREATE TABLE statement named fqn for s in a backend's
// dialect.
type DDLBuilder func(fqn string, s *schema.Schema) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers (or replaces) the DDLBuilder for kind. It is
// typically called from backend packages' init functions.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// BuildCreateTable renders DDL for s without opening a connection.
func BuildCreateTable(kind, fqn string, s *schema.Schema) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL builder registered for storage kind %q", kind)
	}
	return fn(fqn, s)
}

// EnsureTable creates table fqn shaped after s through repo. The generated
// statements are idempotent.
func EnsureTable(ctx context.Context, repo Repository, kind, fqn string, s *schema.Schema) error {
	sql, err := BuildCreateTable(kind, fqn, s)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", fqn, err)
	}
	return nil
}
