package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xaviermathew/Aragog/internal/config"
	"github.com/xaviermathew/Aragog/internal/schema"
)

// LRU is an in-process cache bounded by entry count.
type LRU struct {
	cache *lru.Cache[string, *schema.PartialSchema]
}

// NewLRU creates a cache holding at most size partials.
func NewLRU(size int) (*LRU, error) {
	if size <= 0 {
		size = config.DefaultCacheSize
	}
	c, err := lru.New[string, *schema.PartialSchema](size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

func (c *LRU) Get(_ context.Context, key string) (*schema.PartialSchema, bool, error) {
	p, ok := c.cache.Get(key)
	return p, ok, nil
}

func (c *LRU) Put(_ context.Context, key string, p *schema.PartialSchema) error {
	c.cache.Add(key, p)
	return nil
}

// Len returns the number of cached partials.
func (c *LRU) Len() int { return c.cache.Len() }

func (c *LRU) Close() error {
	c.cache.Purge()
	return nil
}
