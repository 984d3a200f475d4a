package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/xaviermathew/Aragog/internal/schema"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "aragog:partial:"

// Redis stores partials as JSON under prefix+key.
type Redis struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

// Option configures a Redis store.
type Option func(*Redis)

// WithTTL sets the expiry of new entries. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option { return func(r *Redis) { r.ttl = ttl } }

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option { return func(r *Redis) { r.prefix = prefix } }

// NewRedis connects to a Redis server. The connection is lazy.
func NewRedis(addr, password string, db int, opts ...Option) *Redis {
	r := NewRedisFromClient(backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
	r.owned = true
	return r
}

// NewRedisFromClient wraps an existing client; Close leaves it open.
func NewRedisFromClient(client *backend.Client, opts ...Option) *Redis {
	r := &Redis{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) (*schema.PartialSchema, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	p := new(schema.PartialSchema)
	if err := json.Unmarshal(b, p); err != nil {
		return nil, false, fmt.Errorf("decode cached partial %s: %w", key, err)
	}
	return p, true, nil
}

func (r *Redis) Put(ctx context.Context, key string, p *schema.PartialSchema) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode partial %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
