// Package cache stores partial schemas keyed by partition fingerprint, so a
// re-run over unchanged partitions skips rebuilding them.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// Store is a partial-schema cache. Get reports a miss with ok=false and a nil
// error. Stored partials must not be mutated by callers.
type Store interface {
	Get(ctx context.Context, key string) (p *schema.PartialSchema, ok bool, err error)
	Put(ctx context.Context, key string, p *schema.PartialSchema) error
	Close() error
}

// Nop never hits.
type Nop struct{}

func (Nop) Get(context.Context, string) (*schema.PartialSchema, bool, error) { return nil, false, nil }
func (Nop) Put(context.Context, string, *schema.PartialSchema) error        { return nil }
func (Nop) Close() error                                                     { return nil }

// Open builds the store named by c.Kind.
func Open(c config.Cache) (Store, error) {
	switch c.Kind {
	case "", "none":
		return Nop{}, nil
	case "lru":
		return NewLRU(c.Size)
	case "redis":
		var opts []Option
		if c.Prefix != "" {
			opts = append(opts, WithPrefix(c.Prefix))
		}
		if c.TTL != "" {
			ttl, err := time.ParseDuration(c.TTL)
			if err != nil {
				return nil, fmt.Errorf("cache ttl: %w", err)
			}
			opts = append(opts, WithTTL(ttl))
		}
		return NewRedis(c.Addr, c.Password, c.DB, opts...), nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", c.Kind)
	}
}
