package postgres

import (
	"context"
	"testing"

	"github.com/xaviermathew/Aragog/internal/storage"
)

func TestPostgresStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	ctx := context.Background()

	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg   Config
		closed   bool
		fakeRepo = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	repo, err := storage.New(ctx, storage.Config{Kind: "postgres", DSN: "postgres://x", Table: "meta.schemas"})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotCfg.DSN != "postgres://x" || gotCfg.Table != "meta.schemas" {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	if w := repo.(*wrappedRepo); w.Repository != fakeRepo {
		t.Fatalf("wrappedRepo.Repository = %p, want %p", w.Repository, fakeRepo)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close() did not invoke closeFn")
	}
}

func TestPostgresDDLRegistered(t *testing.T) {
	t.Parallel()

	if _, err := storage.BuildCreateTable("postgres", "t", nil); err == nil {
		t.Fatalf("BuildCreateTable(nil schema) error = nil, want error")
	}
}
